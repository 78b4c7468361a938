package core

import (
	"math/big"

	"github.com/stafi-dex/rdex-core/pkg/utils"
)

// Resource bounds on the per-account unlock-chunk vector (spec §3/§5).
const (
	MaxUnlockingChunks = 32
	MinUnlockingChunks = 16
)

// UserUnlockChunk is one pending unbond entry for an account.
type UserUnlockChunk struct {
	Pool      string
	UnlockEra uint32
	Value     uint64
	Recipient []byte
}

type unlockChunkKey struct {
	Account Address
	Symbol  RSymbol
}

// recipientWellFormed applies a minimal length check per chain family.
// Full address validation is the responsibility of the per-chain
// signature/encoding primitives (out of scope per spec §1); this guards
// only against obviously-empty or truncated input.
func recipientWellFormed(ct ChainType, recipient []byte) bool {
	switch ct {
	case ChainEthereum:
		return len(recipient) == 20
	case ChainSubstrate, ChainCosmos:
		return len(recipient) == 32
	default:
		return len(recipient) > 0
	}
}

// chunksFor returns the unlock chunks stored for key, lazily
// initializing the chunk map on first use.
func (b *BondLifecycle) chunksFor(key unlockChunkKey) []UserUnlockChunk {
	if b.chunks == nil {
		b.chunks = make(map[unlockChunkKey][]UserUnlockChunk)
	}
	return b.chunks[key]
}

// LiquidityUnbond burns rTOKEN (net of the unbond commission) and
// schedules a future on-source-chain withdrawal, appending a per-account
// unlock chunk and a pool-level unbond queue entry (spec §4.3).
func (b *BondLifecycle) LiquidityUnbond(who Address, symbol RSymbol, pool string, value uint64, recipient []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !Config().RtokenBondSwitch(symbol) {
		return utils.Wrap(ErrBondSwitchClosed, "liquidity_unbond")
	}
	bonded := b.ledger.BondedPools(symbol)
	if _, ok := bonded[pool]; !ok {
		return utils.Wrap(ErrPoolNotBonded, "liquidity_unbond")
	}
	if !recipientWellFormed(symbol.ChainType(), recipient) {
		return utils.Wrap(ErrInvalidRecipient, "liquidity_unbond")
	}
	if value == 0 {
		return utils.Wrap(ErrLiquidityUnbondZero, "liquidity_unbond")
	}
	if b.rtoken.FreeBalance(who, symbol) < value {
		return utils.Wrap(ErrUserRTokenAmountNotEnough, "liquidity_unbond")
	}

	currentEra, ok := b.ledger.ChainEra(symbol)
	if !ok {
		return utils.Wrap(ErrNoCurrentEra, "liquidity_unbond")
	}
	bondingDuration, ok := b.ledger.ChainBondingDuration(symbol)
	if !ok {
		return utils.Wrap(ErrBondingDurationNotSet, "liquidity_unbond")
	}
	unlockEra := currentEra + bondingDuration

	commission := Config().UnbondCommission()
	feeBig := new(big.Int).Mul(new(big.Int).SetUint64(value), new(big.Int).SetUint64(uint64(commission)))
	feeBig.Div(feeBig, new(big.Int).SetUint64(CommissionDenominator))
	fee := feeBig.Uint64()
	left := value - fee
	if left == 0 {
		return utils.Wrap(ErrLiquidityUnbondZero, "liquidity_unbond")
	}
	balance := b.rate.RtokenToToken(symbol, left)

	pipeline := b.ledger.BondPipeline(symbol, pool)
	newUnbond := pipeline.Unbond + balance
	if newUnbond < pipeline.Unbond {
		return utils.Wrap(ErrOverFlow, "liquidity_unbond")
	}
	if pipeline.Active < balance {
		return utils.Wrap(ErrInsufficient, "liquidity_unbond")
	}
	pipeline.Unbond = newUnbond
	pipeline.Active -= balance

	key := unlockChunkKey{Account: who, Symbol: symbol}
	existing := b.chunksFor(key)
	if len(existing) >= MaxUnlockingChunks {
		filtered := make([]UserUnlockChunk, 0, len(existing))
		for _, c := range existing {
			if c.UnlockEra >= currentEra {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) < MinUnlockingChunks {
			drop := MaxUnlockingChunks - MinUnlockingChunks + 1
			if drop > len(existing) {
				drop = len(existing)
			}
			existing = append([]UserUnlockChunk{}, existing[drop:]...)
		} else {
			existing = filtered
		}
		if len(existing) >= MaxUnlockingChunks {
			return utils.Wrap(ErrNoMoreUnbondingChunks, "liquidity_unbond")
		}
	}

	poolUnbonds := b.ledger.PoolUnbonds(symbol, pool, unlockEra)
	if limit := b.ledger.EraUnbondLimit(symbol); limit > 0 {
		// pre-append length compared with <=, a deliberate off-by-one
		// that permits one entry over the configured limit per era
		// (spec §9 — preserved, not "fixed").
		if len(poolUnbonds) > int(limit) {
			return utils.Wrap(ErrEraUnbondLimitReached, "liquidity_unbond")
		}
	}

	existing = append(existing, UserUnlockChunk{Pool: pool, UnlockEra: unlockEra, Value: balance, Recipient: recipient})
	if b.chunks == nil {
		b.chunks = make(map[unlockChunkKey][]UserUnlockChunk)
	}
	b.chunks[key] = existing
	b.ledger.AppendPoolUnbond(symbol, pool, unlockEra, Unbonding{Who: who, Value: balance, Recipient: recipient})

	if unbondFee := Config().UnbondFees(symbol); unbondFee > 0 {
		relayReceiver, hasRelayReceiver := Config().RelayFeesReceiver()
		if !hasRelayReceiver {
			return utils.Wrap(ErrNoRelayFeesReceiver, "liquidity_unbond: relay fee")
		}
		if err := b.native.Transfer(who, relayReceiver, unbondFee, false); err != nil {
			return utils.Wrap(err, "liquidity_unbond: relay fee")
		}
	}

	receiver, hasReceiver := b.ledger.Receiver()
	if fee > 0 {
		if !hasReceiver {
			return utils.Wrap(ErrNoRelayFeesReceiver, "liquidity_unbond")
		}
		if err := b.rtoken.Transfer(who, receiver, symbol, fee); err != nil {
			return utils.Wrap(err, "liquidity_unbond: commission transfer")
		}
	}
	if err := b.rtoken.Burn(who, symbol, left); err != nil {
		return utils.Wrap(err, "liquidity_unbond: burn")
	}

	b.ledger.SetBondPipeline(symbol, pool, pipeline)

	Events().Emit(EvtLiquidityUnBond, LiquidityUnBondEventData{
		Acct: who, Symbol: symbol, Pool: pool, Value: value, LeftValue: left, Balance: balance, Recipient: recipient,
	})
	return nil
}

// UnlockChunksOf returns a copy of the pending unlock chunks for an
// account/symbol pair.
func (b *BondLifecycle) UnlockChunksOf(acct Address, symbol RSymbol) []UserUnlockChunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	chunks := b.chunksFor(unlockChunkKey{Account: acct, Symbol: symbol})
	out := make([]UserUnlockChunk, len(chunks))
	copy(out, chunks)
	return out
}
