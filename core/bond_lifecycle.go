package core

import (
	"encoding/hex"
	"math/big"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/stafi-dex/rdex-core/pkg/utils"
)

// CrossChainParams carries the destination and recipient for a
// cross-chain bond submission (liquidity_bond_and_swap). A nil value
// means the ordinary, same-chain bond path.
type CrossChainParams struct {
	DestID    uint32
	Recipient []byte
}

// BondLifecycle is the bond record registry and state machine (spec
// §4.3), grounded on the teacher's singleton-manager idiom
// (dao_staking.go) generalized from a single stake balance to the full
// submit/execute/refund pipeline.
type BondLifecycle struct {
	mu sync.Mutex

	logger       *log.Logger
	native       NativeCurrency
	rtoken       RCurrency
	rate         RateOracle
	ledger       Ledger
	relayers     RelayerSet
	bridge       Bridge
	sigVerifier  SignatureVerifier
	claim        ClaimTracker
	localChainID uint32

	records   map[Hash]BondRecord
	current   map[txKey]Hash
	states    map[txKey]BondState
	reasons   map[bondIDKey]BondReason
	swaps     map[bondIDKey]*BondSwap
	bondCount map[Address]uint64
	chunks    map[unlockChunkKey][]UserUnlockChunk
}

var (
	bondOnce sync.Once
	bondMgr  *BondLifecycle
)

// InitBondLifecycle installs the global bond lifecycle manager.
func InitBondLifecycle(lg *log.Logger, native NativeCurrency, rtoken RCurrency, rate RateOracle, ledger Ledger,
	relayers RelayerSet, bridge Bridge, sigVerifier SignatureVerifier, claim ClaimTracker, localChainID uint32) {
	bondOnce.Do(func() {
		bondMgr = &BondLifecycle{
			logger: lg, native: native, rtoken: rtoken, rate: rate, ledger: ledger,
			relayers: relayers, bridge: bridge, sigVerifier: sigVerifier, claim: claim,
			localChainID: localChainID,
			records:      make(map[Hash]BondRecord),
			current:      make(map[txKey]Hash),
			states:       make(map[txKey]BondState),
			reasons:      make(map[bondIDKey]BondReason),
			swaps:        make(map[bondIDKey]*BondSwap),
			bondCount:    make(map[Address]uint64),
		}
	})
}

// BondLifecycleManager returns the singleton bond lifecycle manager.
func BondLifecycleManager() *BondLifecycle { return bondMgr }

func available(s BondState) bool   { return s == BondStateAbsent || s == BondStateFail }
func executable(s BondState) bool  { return s == BondStateDealing || s == BondStateFail }

// attestationMessage reconstructs the canonical signed message for an
// account id: ASCII-hex of the encoded account id for ethereum-family
// symbols, the raw encoding for every other family (spec §4.3).
func attestationMessage(acct Address, ct ChainType) []byte {
	if ct == ChainEthereum {
		return []byte(hex.EncodeToString(acct[:]))
	}
	raw := make([]byte, len(acct))
	copy(raw, acct[:])
	return raw
}

// BondState returns the current state of a (symbol, blockhash, txhash)
// instance, BondStateAbsent if never submitted.
func (b *BondLifecycle) BondState(symbol RSymbol, blockhash, txhash []byte) BondState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[newTxKey(symbol, blockhash, txhash)]
}

// BondCountOf returns the number of successful submissions by an
// account, supplemented from original_source (SPEC_FULL §4.3.1).
func (b *BondLifecycle) BondCountOf(acct Address) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bondCount[acct]
}

// LiquidityBond submits a same-chain bond attestation.
func (b *BondLifecycle) LiquidityBond(who Address, symbol RSymbol, pubkey []byte, pool string, blockhash, txhash []byte, amount uint64, signature []byte) (Hash, error) {
	return b.submit(who, symbol, pubkey, pool, blockhash, txhash, amount, signature, nil)
}

// LiquidityBondAndSwap submits a cross-chain bond attestation.
func (b *BondLifecycle) LiquidityBondAndSwap(who Address, symbol RSymbol, pubkey []byte, pool string, blockhash, txhash []byte, amount uint64, signature []byte, cc CrossChainParams) (Hash, error) {
	return b.submit(who, symbol, pubkey, pool, blockhash, txhash, amount, signature, &cc)
}

func (b *BondLifecycle) submit(who Address, symbol RSymbol, pubkey []byte, pool string, blockhash, txhash []byte, amount uint64, signature []byte, cc *CrossChainParams) (Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !Config().BondSwitch() {
		return Hash{}, utils.Wrap(ErrBondSwitchClosed, "liquidity_bond")
	}
	if !Config().RtokenBondSwitch(symbol) {
		return Hash{}, utils.Wrap(ErrBondSwitchClosed, "liquidity_bond")
	}
	if amount == 0 {
		return Hash{}, utils.Wrap(ErrLiquidityBondZero, "liquidity_bond")
	}

	key := newTxKey(symbol, blockhash, txhash)
	if !available(b.states[key]) {
		return Hash{}, utils.Wrap(ErrTxhashUnavailable, "liquidity_bond")
	}

	bonded := b.ledger.BondedPools(symbol)
	if _, ok := bonded[pool]; !ok {
		return Hash{}, utils.Wrap(ErrPoolNotBonded, "liquidity_bond")
	}

	msg := attestationMessage(who, symbol.ChainType())
	switch b.sigVerifier.Verify(symbol.ChainType(), pubkey, msg, signature) {
	case SigInvalidPubkey:
		return Hash{}, utils.Wrap(ErrInvalidPubkey, "liquidity_bond")
	case SigFail:
		return Hash{}, utils.Wrap(ErrInvalidSignature, "liquidity_bond")
	}

	record := BondRecord{Bonder: who, Symbol: symbol, Pubkey: pubkey, Pool: pool, Blockhash: blockhash, Txhash: txhash, Amount: amount}
	bondID := BondID(record)
	if _, exists := b.records[bondID]; exists {
		return Hash{}, utils.Wrap(ErrBondRepeated, "liquidity_bond")
	}

	bondFee := Config().BondFees(symbol)
	receiver, hasReceiver := Config().RelayFeesReceiver()

	var swap *BondSwap
	if cc != nil && cc.DestID != b.localChainID {
		// resource mapping checked before any fee moves (SPEC_FULL §4.3.1).
		if _, ok := b.bridge.RsymbolResource(symbol); !ok {
			return Hash{}, utils.Wrap(ErrInvalidRSymbol, "liquidity_bond_and_swap: no resource mapping")
		}
		swapFee, swapReceiver, bridger, err := b.bridge.Swapable(cc.Recipient, cc.DestID)
		if err != nil {
			return Hash{}, utils.Wrap(err, "liquidity_bond_and_swap: swapable")
		}
		switch {
		case swapFee > 0 && bondFee > 0:
			if err := b.native.Transfer(who, bridger, swapFee+bondFee, false); err != nil {
				return Hash{}, utils.Wrap(err, "liquidity_bond_and_swap: user->bridger")
			}
			if !hasReceiver {
				return Hash{}, utils.Wrap(ErrNoRelayFeesReceiver, "liquidity_bond_and_swap")
			}
			if err := b.native.Transfer(bridger, receiver, bondFee, false); err != nil {
				return Hash{}, utils.Wrap(err, "liquidity_bond_and_swap: bridger->receiver")
			}
		case swapFee > 0:
			if err := b.native.Transfer(who, bridger, swapFee, false); err != nil {
				return Hash{}, utils.Wrap(err, "liquidity_bond_and_swap: user->bridger")
			}
		case bondFee > 0:
			if !hasReceiver {
				return Hash{}, utils.Wrap(ErrNoRelayFeesReceiver, "liquidity_bond_and_swap")
			}
			if err := b.native.Transfer(who, receiver, bondFee, false); err != nil {
				return Hash{}, utils.Wrap(err, "liquidity_bond_and_swap: user->receiver")
			}
		}
		swap = &BondSwap{
			Bonder: who, SwapFee: swapFee, SwapReceiver: swapReceiver, Bridger: bridger,
			Recipient: cc.Recipient, DestID: cc.DestID, Expire: 0, BondState: BondStateDealing, Refunded: false,
		}
	} else if bondFee > 0 {
		if !hasReceiver {
			return Hash{}, utils.Wrap(ErrNoRelayFeesReceiver, "liquidity_bond")
		}
		if err := b.native.Transfer(who, receiver, bondFee, false); err != nil {
			return Hash{}, utils.Wrap(err, "liquidity_bond: transfer fee")
		}
	}

	b.bondCount[who]++
	b.records[bondID] = record
	b.current[key] = bondID
	b.states[key] = BondStateDealing
	if swap != nil {
		b.swaps[bondIDKey{Symbol: symbol, BondID: bondID}] = swap
	}

	Events().Emit(EvtLiquidityBond, LiquidityBondEventData{Acct: who, Symbol: symbol, BondID: bondID})
	b.logger.Infof("bond submitted acct=%s symbol=%s bond_id=%x", who, symbol, bondID)
	return bondID, nil
}

// ExecuteBondRecord executes a Dealing or Fail record (voter-origin
// only, enforced by the caller per spec §1/§6). now is the current
// block height, used to start the refund-expiry timer on rejection.
func (b *BondLifecycle) ExecuteBondRecord(symbol RSymbol, blockhash, txhash []byte, reason BondReason, now uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := newTxKey(symbol, blockhash, txhash)
	bondID, ok := b.current[key]
	if !ok {
		return utils.Wrap(ErrBondNotFound, "execute_bond_record")
	}
	if !executable(b.states[key]) {
		return utils.Wrap(ErrTxhashUnexecutable, "execute_bond_record")
	}
	record := b.records[bondID]
	idKey := bondIDKey{Symbol: symbol, BondID: bondID}

	if reason != ReasonPass {
		if swap, exists := b.swaps[idKey]; exists && !swap.Refunded {
			expireBlocks, set := Config().BondSwapRefundExpire(symbol)
			if !set {
				return utils.Wrap(ErrExpireNotSet, "execute_bond_record")
			}
			swap.Expire = now + expireBlocks
			swap.BondState = BondStateFail
		}
		b.states[key] = BondStateFail
		b.reasons[idKey] = reason
		return nil
	}

	pipeline := b.ledger.BondPipeline(symbol, record.Pool)
	newBond := pipeline.Bond + record.Amount
	if newBond < pipeline.Bond {
		return utils.Wrap(ErrOverFlow, "execute_bond_record")
	}
	newActive := pipeline.Active + record.Amount
	if newActive < pipeline.Active {
		return utils.Wrap(ErrOverFlow, "execute_bond_record")
	}
	pipeline.Bond = newBond
	pipeline.Active = newActive

	rbalance := b.rate.TokenToRtoken(symbol, record.Amount)

	if swap, exists := b.swaps[idKey]; exists {
		if swap.SwapFee > 0 {
			if err := b.native.Transfer(swap.Bridger, swap.SwapReceiver, swap.SwapFee, false); err != nil {
				return utils.Wrap(err, "execute_bond_record: swap fee")
			}
		}
		if err := b.rtoken.Mint(swap.Bridger, symbol, rbalance); err != nil {
			return utils.Wrap(err, "execute_bond_record: mint to bridger")
		}
		resource, ok := b.bridge.RsymbolResource(symbol)
		if !ok {
			return utils.Wrap(ErrInvalidRSymbol, "execute_bond_record: resource mapping")
		}
		if err := b.bridge.TransferFungible(record.Bonder, swap.DestID, resource, swap.Recipient, new(big.Int).SetUint64(rbalance)); err != nil {
			return utils.Wrap(err, "execute_bond_record: bridge transfer")
		}
		swap.BondState = BondStateSuccess
	} else {
		if err := b.rtoken.Mint(record.Bonder, symbol, rbalance); err != nil {
			return utils.Wrap(err, "execute_bond_record: mint")
		}
	}

	b.states[key] = BondStateSuccess
	b.reasons[idKey] = ReasonPass
	b.ledger.SetBondPipeline(symbol, record.Pool, pipeline)
	b.claim.UpdateClaimInfo(record.Bonder, symbol, rbalance, record.Amount)
	b.logger.Infof("bond executed acct=%s symbol=%s bond_id=%x rbalance=%d", record.Bonder, symbol, bondID, rbalance)
	return nil
}

// RefundSwapFee refunds a cross-chain bond's swap fee once the
// execution rejected the bond and the refund-expiry window has
// elapsed. Idempotent: a second call fails with ErrNotRefundable
// (spec §8).
func (b *BondLifecycle) RefundSwapFee(symbol RSymbol, bondID Hash, now uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idKey := bondIDKey{Symbol: symbol, BondID: bondID}
	swap, exists := b.swaps[idKey]
	if !exists {
		return utils.Wrap(ErrSwapNotExist, "refund_swap_fee")
	}
	if !swap.Refundable(now) {
		return utils.Wrap(ErrNotRefundable, "refund_swap_fee")
	}
	if err := b.native.Transfer(swap.Bridger, swap.Bonder, swap.SwapFee, false); err != nil {
		return utils.Wrap(err, "refund_swap_fee: transfer")
	}
	swap.Refunded = true

	Events().Emit(EvtSwapFeeRefunded, SwapFeeRefundedEventData{
		Symbol: symbol, BondID: bondID, Bonder: swap.Bonder, Bridger: swap.Bridger, Amount: swap.SwapFee,
	})
	return nil
}
