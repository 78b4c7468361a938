package core

import "math/big"

// The interfaces in this file are the collaborators spec §6 treats as
// external: the host chain runtime, the rate oracle, the generic
// currency/LP modules, the relayer-set module, the claim-tracking
// module, the bridge module and per-chain signature verification.
// core never implements them for production use; memledger.go provides
// an in-memory reference implementation for tests only.

// NativeCurrency moves the native FIS token.
type NativeCurrency interface {
	FreeBalance(acct Address) uint64
	Transfer(from, to Address, amount uint64, keepAlive bool) error
}

// RCurrency moves rTOKEN balances, one ledger per symbol.
type RCurrency interface {
	FreeBalance(acct Address, symbol RSymbol) uint64
	Transfer(from, to Address, symbol RSymbol, amount uint64) error
	Mint(acct Address, symbol RSymbol, amount uint64) error
	Burn(acct Address, symbol RSymbol, amount uint64) error
}

// LpCurrency moves LP-unit balances, one ledger per symbol.
type LpCurrency interface {
	FreeBalance(acct Address, symbol RSymbol) uint64
	Mint(acct Address, symbol RSymbol, amount uint64) error
	Burn(acct Address, symbol RSymbol, amount uint64) error
}

// RateOracle converts between a symbol's source-chain token and its
// rTOKEN at the current,
// block-deterministic exchange rate. Not invertible in general: the
// round trip token_to_rtoken(rtoken_to_token(x)) == x is intentionally
// not guaranteed (spec §8).
type RateOracle interface {
	TokenToRtoken(symbol RSymbol, amount uint64) uint64
	RtokenToToken(symbol RSymbol, amount uint64) uint64
}

// BondPipeline is the per-(symbol, pool) running counter set the
// bond/unbond lifecycle maintains in the external ledger.
type BondPipeline struct {
	Bond   uint64
	Active uint64
	Unbond uint64
}

// Unbonding is one pool-level unbond queue entry, indexed by
// (symbol, pool, unlock_era).
type Unbonding struct {
	Who       Address
	Value     uint64
	Recipient []byte
}

// Ledger is the read/write external ledger spec §6 enumerates: bonded
// pools, chain era/bonding-duration, the receiver of the rTOKEN unbond
// commission (not the relay fees receiver, which is BondConfig's), last voter,
// per-symbol era unbond limit, multisig thresholds, bond pipelines and
// pool unbond queues.
type Ledger interface {
	BondedPools(symbol RSymbol) map[string]struct{}
	ChainEra(symbol RSymbol) (uint32, bool)
	ChainBondingDuration(symbol RSymbol) (uint32, bool)
	Receiver() (Address, bool)
	LastVoter(symbol RSymbol, pool string) (Address, bool)
	EraUnbondLimit(symbol RSymbol) uint16
	MultiThreshold(symbol RSymbol, pool string) (uint16, bool)

	BondPipeline(symbol RSymbol, pool string) BondPipeline
	SetBondPipeline(symbol RSymbol, pool string, p BondPipeline)
	PoolUnbonds(symbol RSymbol, pool string, era uint32) []Unbonding
	AppendPoolUnbond(symbol RSymbol, pool string, era uint32, u Unbonding)
}

// RelayerSet reports whether an account is a registered relayer for a
// symbol.
type RelayerSet interface {
	IsRelayer(symbol RSymbol, acct Address) bool
}

// Bridge is the cross-chain transfer subsystem consulted for
// cross-chain bonds.
type Bridge interface {
	// Swapable reports the swap fee, swap-fee receiver and bridger
	// account for a (recipient, destChain) pair, or an error if the
	// destination is not serviceable.
	Swapable(recipient []byte, destID uint32) (swapFee uint64, swapReceiver Address, bridger Address, err error)
	// RsymbolResource returns the bridge resource id registered for
	// symbol, or false if none is mapped.
	RsymbolResource(symbol RSymbol) ([32]byte, bool)
	TransferFungible(bonder Address, destID uint32, resource [32]byte, recipient []byte, amount *big.Int) error
}

// SignatureVerdict is the outcome of verifying an attestation.
type SignatureVerdict uint8

const (
	SigPass SignatureVerdict = iota
	SigInvalidPubkey
	SigFail
)

// SignatureVerifier verifies a bonder's attestation against the
// per-chain-family message and signature scheme (spec §6).
type SignatureVerifier interface {
	Verify(chainType ChainType, pubkey []byte, message []byte, signature []byte) SignatureVerdict
}

// ClaimTracker records bond executions for the external claim module.
type ClaimTracker interface {
	UpdateClaimInfo(bonder Address, symbol RSymbol, rbalance uint64, amount uint64)
}
