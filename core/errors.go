package core

import "errors"

// Error taxonomy per the enumerated-rejection design: every operation
// stops at the first error it returns (no internal retry). Writes an
// operation made before that error are not rolled back.

// Preconditions
var (
	ErrAmountZero            = errors.New("amount zero")
	ErrAmountAllZero         = errors.New("both amounts zero")
	ErrLiquidityBondZero     = errors.New("bond amount zero")
	ErrLiquidityUnbondZero   = errors.New("unbond amount zero")
	ErrUnitAmountImproper    = errors.New("unit amount improper")
	ErrInvalidRSymbol        = errors.New("invalid rsymbol")
	ErrInvalidEra            = errors.New("invalid era")
	ErrExpireNotSet          = errors.New("bond swap refund expire not set")
	ErrBondingDurationNotSet = errors.New("bonding duration not set")
	ErrNoCurrentEra          = errors.New("current era not set")
)

// Existence
var (
	ErrPoolNotExist        = errors.New("pool does not exist")
	ErrPoolAlreadyExist    = errors.New("pool already exists")
	ErrBondNotFound        = errors.New("bond record not found")
	ErrSwapNotExist        = errors.New("bond swap not found")
	ErrNoRelayFeesReceiver = errors.New("relay fees receiver not set")
	ErrPoolNotBonded       = errors.New("pool not bonded")
)

// Authorization
var (
	ErrInvalidProxyAccount = errors.New("invalid proxy account")
	ErrMustBeRelayer       = errors.New("caller must be a registered relayer")
	ErrBondSwitchClosed    = errors.New("bond switch closed")
)

// Integrity
var (
	ErrInvalidPubkey          = errors.New("invalid pubkey")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrSignatureRepeated      = errors.New("signature repeated")
	ErrBondRepeated           = errors.New("bond repeated")
	ErrNominationsInitialized = errors.New("nominations already initialized")
)

// Capacity / arithmetic
var (
	ErrOverFlow                   = errors.New("overflow")
	ErrInsufficient               = errors.New("insufficient balance")
	ErrNoMoreUnbondingChunks      = errors.New("no more unbonding chunks")
	ErrPoolLimitReached           = errors.New("pool balance limit reached")
	ErrUserRTokenAmountNotEnough  = errors.New("user rtoken amount not enough")
	ErrUserFisAmountNotEnough     = errors.New("user fis amount not enough")
	ErrPoolFisBalanceNotEnough    = errors.New("pool fis balance not enough")
	ErrPoolRTokenBalanceNotEnough = errors.New("pool rtoken balance not enough")
	// ErrEraUnbondLimitReached is not separately enumerated in spec §7's
	// taxonomy but is required to implement the era-unbond-limit check
	// of spec §4.3 (pool_unbonds.len() > limit).
	ErrEraUnbondLimitReached = errors.New("era unbond limit reached")
	// ErrInvalidRecipient: liquidity_unbond rejects a recipient that is
	// not well formed for the symbol's chain family; no dedicated
	// taxonomy entry.
	ErrInvalidRecipient = errors.New("recipient malformed for chain family")
	// ErrSignaturesNotRequired is likewise a necessary supplement: the
	// submit_signatures rejection for substrate-family symbols (spec
	// §4.3) has no dedicated taxonomy entry in spec §7.
	ErrSignaturesNotRequired = errors.New("signatures not collected for this chain family")
	// ErrNoLastVoter: update_nominations requires a last_voter recorded
	// in the external ledger (spec §4.3); no dedicated taxonomy entry.
	ErrNoLastVoter = errors.New("last voter not recorded")
)

// Business
var (
	ErrSwapAmountTooFew      = errors.New("swap amount too few")
	ErrLessThanMinOutAmount  = errors.New("less than min out amount")
	ErrTxhashUnavailable     = errors.New("txhash unavailable")
	ErrTxhashUnexecutable    = errors.New("txhash unexecutable")
	ErrBondProcessing        = errors.New("bond still processing")
	ErrEraRateNotUpdated     = errors.New("era rate not updated")
	ErrEraRateAlreadyUpdated = errors.New("era rate already updated")
	ErrNotRefundable         = errors.New("not refundable")
)
