package core

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/stafi-dex/rdex-core/pkg/utils"
)

// SwapPool is the per-symbol reserve pair and LP accounting record
// (spec §3). total_unit > 0 iff both reserves are non-zero.
type SwapPool struct {
	Symbol        RSymbol
	FisBalance    uint64
	RtokenBalance uint64
	TotalUnit     uint64
}

// SwapEngine is the pool registry and state-transition authority for
// create/add/swap/remove, mirroring the teacher's singleton AMM
// manager (InitAMM/Manager in liquidity_pools.go) generalized to the
// asymmetric CFMM of spec §4.1 and keyed by RSymbol instead of a pool
// id pair.
type SwapEngine struct {
	mu     sync.Mutex
	logger *log.Logger
	native NativeCurrency
	rtoken RCurrency
	lp     LpCurrency
	ledger Ledger
	pools  map[RSymbol]*SwapPool
}

var (
	swapOnce sync.Once
	swapMgr  *SwapEngine
)

// InitSwapEngine installs the global swap engine. Authorization for
// admin-only operations (create_pool) is enforced by the host runtime's
// origin system before reaching here (out of scope per spec §1); who
// is already the authorized caller.
func InitSwapEngine(lg *log.Logger, native NativeCurrency, rtoken RCurrency, lp LpCurrency, led Ledger) {
	swapOnce.Do(func() {
		swapMgr = &SwapEngine{
			logger: lg,
			native: native,
			rtoken: rtoken,
			lp:     lp,
			ledger: led,
			pools:  make(map[RSymbol]*SwapPool),
		}
	})
}

// SwapEngineManager returns the singleton swap engine.
func SwapEngineManager() *SwapEngine { return swapMgr }

// Pool returns the pool for symbol, or nil if none exists yet.
func (e *SwapEngine) Pool(symbol RSymbol) *SwapPool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pools[symbol]
}

// CreatePool mints bootstrap LP units equal to fisAmount to who, moves
// both amounts from who into the pallet account, and inserts the pool.
func (e *SwapEngine) CreatePool(who Address, symbol RSymbol, rtokenAmount, fisAmount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.pools[symbol]; exists {
		return utils.Wrap(ErrPoolAlreadyExist, "create_pool")
	}
	if rtokenAmount == 0 || fisAmount == 0 {
		return utils.Wrap(ErrAmountZero, "create_pool")
	}
	// strict '>' per spec §9: the user must keep at least one unit of
	// native balance after funding the pool.
	if e.native.FreeBalance(who) <= fisAmount {
		return utils.Wrap(ErrUserFisAmountNotEnough, "create_pool")
	}
	if e.rtoken.FreeBalance(who, symbol) < rtokenAmount {
		return utils.Wrap(ErrUserRTokenAmountNotEnough, "create_pool")
	}

	if err := e.native.Transfer(who, PalletAccount, fisAmount, false); err != nil {
		return utils.Wrap(err, "create_pool: transfer fis")
	}
	if err := e.rtoken.Transfer(who, PalletAccount, symbol, rtokenAmount); err != nil {
		return utils.Wrap(err, "create_pool: transfer rtoken")
	}

	lpUnit := fisAmount
	if err := e.lp.Mint(who, symbol, lpUnit); err != nil {
		return utils.Wrap(err, "create_pool: mint lp")
	}

	pool := &SwapPool{Symbol: symbol, FisBalance: fisAmount, RtokenBalance: rtokenAmount, TotalUnit: lpUnit}
	e.pools[symbol] = pool

	Events().Emit(EvtCreatePool, CreatePoolEventData{
		Who: who, Symbol: symbol, FisAmount: fisAmount, RtokenAmount: rtokenAmount,
		TotalUnit: lpUnit, LpUnit: lpUnit,
	})
	e.logger.Infof("pool %s created fis=%d rtoken=%d unit=%d", symbol, fisAmount, rtokenAmount, lpUnit)
	return nil
}

// AddLiquidity computes (newTotal, added) via the pool-unit formula,
// transfers both assets in, mints added LP units, and updates reserves.
func (e *SwapEngine) AddLiquidity(who Address, symbol RSymbol, rtokenAmount, fisAmount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[symbol]
	if !ok {
		return utils.Wrap(ErrPoolNotExist, "add_liquidity")
	}
	if fisAmount == 0 && rtokenAmount == 0 {
		return utils.Wrap(ErrAmountAllZero, "add_liquidity")
	}
	if e.native.FreeBalance(who) <= fisAmount {
		return utils.Wrap(ErrUserFisAmountNotEnough, "add_liquidity")
	}
	if e.rtoken.FreeBalance(who, symbol) < rtokenAmount {
		return utils.Wrap(ErrUserRTokenAmountNotEnough, "add_liquidity")
	}

	newTotal, added := CalPoolUnit(pool.TotalUnit, pool.FisBalance, pool.RtokenBalance, fisAmount, rtokenAmount)

	if fisAmount > 0 {
		if err := e.native.Transfer(who, PalletAccount, fisAmount, false); err != nil {
			return utils.Wrap(err, "add_liquidity: transfer fis")
		}
	}
	if rtokenAmount > 0 {
		if err := e.rtoken.Transfer(who, PalletAccount, symbol, rtokenAmount); err != nil {
			return utils.Wrap(err, "add_liquidity: transfer rtoken")
		}
	}
	if err := e.lp.Mint(who, symbol, added); err != nil {
		return utils.Wrap(err, "add_liquidity: mint lp")
	}

	pool.FisBalance += fisAmount
	pool.RtokenBalance += rtokenAmount
	pool.TotalUnit = newTotal

	Events().Emit(EvtAddLiquidity, AddLiquidityEventData{
		Who: who, Symbol: symbol, FisAmount: fisAmount, RtokenAmount: rtokenAmount,
		NewTotalUnit: newTotal, AddedUnit: added,
	})
	return nil
}

// Swap exchanges inputAmount of one side for the other, enforcing
// minOutAmount and pool-side-empty checks, and updates reserves.
func (e *SwapEngine) Swap(who Address, symbol RSymbol, inputAmount, minOutAmount uint64, inputIsFis bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[symbol]
	if !ok {
		return utils.Wrap(ErrPoolNotExist, "swap")
	}
	if inputAmount == 0 || minOutAmount == 0 {
		return utils.Wrap(ErrAmountZero, "swap")
	}

	var reserveIn, reserveOut uint64
	if inputIsFis {
		reserveIn, reserveOut = pool.FisBalance, pool.RtokenBalance
	} else {
		reserveIn, reserveOut = pool.RtokenBalance, pool.FisBalance
	}

	result, fee := CalSwapResult(reserveIn, reserveOut, inputAmount)
	if result == 0 {
		return utils.Wrap(ErrSwapAmountTooFew, "swap")
	}
	if result < minOutAmount {
		return utils.Wrap(ErrLessThanMinOutAmount, "swap")
	}
	if result >= reserveOut {
		if inputIsFis {
			return utils.Wrap(ErrPoolRTokenBalanceNotEnough, "swap")
		}
		return utils.Wrap(ErrPoolFisBalanceNotEnough, "swap")
	}

	if inputIsFis {
		if e.native.FreeBalance(who) <= inputAmount {
			return utils.Wrap(ErrUserFisAmountNotEnough, "swap")
		}
		if err := e.native.Transfer(who, PalletAccount, inputAmount, false); err != nil {
			return utils.Wrap(err, "swap: transfer fis in")
		}
		if err := e.rtoken.Transfer(PalletAccount, who, symbol, result); err != nil {
			return utils.Wrap(err, "swap: transfer rtoken out")
		}
		pool.FisBalance += inputAmount
		pool.RtokenBalance -= result
	} else {
		if e.rtoken.FreeBalance(who, symbol) < inputAmount {
			return utils.Wrap(ErrUserRTokenAmountNotEnough, "swap")
		}
		if err := e.rtoken.Transfer(who, PalletAccount, symbol, inputAmount); err != nil {
			return utils.Wrap(err, "swap: transfer rtoken in")
		}
		if err := e.native.Transfer(PalletAccount, who, result, false); err != nil {
			return utils.Wrap(err, "swap: transfer fis out")
		}
		pool.RtokenBalance += inputAmount
		pool.FisBalance -= result
	}

	Events().Emit(EvtSwap, SwapEventData{
		Who: who, Symbol: symbol, InputAmount: inputAmount, InputIsFis: inputIsFis,
		Result: result, Fee: fee, FisBalance: pool.FisBalance, RtokenBalance: pool.RtokenBalance,
	})
	return nil
}

// RemoveLiquidity burns rmUnit LP units, decrements reserves
// proportionally, and optionally performs a trailing internal swap of
// swapUnit units so the withdrawal lands preferentially on one side.
//
// The proportional withdrawal amounts are computed from the pre-swap
// reserves and the reserves are decremented by those amounts *before*
// the internal swap is evaluated against the already-decremented
// reserves (spec §9 — preserved exactly, not "fixed").
func (e *SwapEngine) RemoveLiquidity(who Address, symbol RSymbol, rmUnit, swapUnit uint64, inputIsFis bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[symbol]
	if !ok {
		return utils.Wrap(ErrPoolNotExist, "remove_liquidity")
	}
	userLP := e.lp.FreeBalance(who, symbol)
	if rmUnit == 0 || rmUnit > userLP {
		return utils.Wrap(ErrUnitAmountImproper, "remove_liquidity")
	}
	if swapUnit > rmUnit {
		return utils.Wrap(ErrUnitAmountImproper, "remove_liquidity")
	}

	wF, wR, swapIn := CalRemoveLiquidity(pool.TotalUnit, rmUnit, swapUnit, pool.FisBalance, pool.RtokenBalance, inputIsFis)

	// pre-swap reserve decrement, per the preserved ordering.
	newFis := pool.FisBalance - wF
	newRtoken := pool.RtokenBalance - wR

	outFis, outRtoken := wF, wR
	if swapIn > 0 {
		var reserveIn, reserveOut uint64
		if inputIsFis {
			reserveIn, reserveOut = newFis, newRtoken
		} else {
			reserveIn, reserveOut = newRtoken, newFis
		}
		swapOut, _ := CalSwapResult(reserveIn, reserveOut, swapIn)
		if inputIsFis {
			outFis -= swapIn
			outRtoken += swapOut
			newFis += swapIn
			newRtoken -= swapOut
		} else {
			outRtoken -= swapIn
			outFis += swapOut
			newRtoken += swapIn
			newFis -= swapOut
		}
	}

	if e.native.FreeBalance(PalletAccount) < outFis || e.rtoken.FreeBalance(PalletAccount, symbol) < outRtoken {
		return utils.Wrap(ErrInsufficient, "remove_liquidity: pallet custody")
	}

	if err := e.lp.Burn(who, symbol, rmUnit); err != nil {
		return utils.Wrap(err, "remove_liquidity: burn lp")
	}
	if outFis > 0 {
		if err := e.native.Transfer(PalletAccount, who, outFis, false); err != nil {
			return utils.Wrap(err, "remove_liquidity: transfer fis")
		}
	}
	if outRtoken > 0 {
		if err := e.rtoken.Transfer(PalletAccount, who, symbol, outRtoken); err != nil {
			return utils.Wrap(err, "remove_liquidity: transfer rtoken")
		}
	}

	pool.FisBalance = newFis
	pool.RtokenBalance = newRtoken
	pool.TotalUnit -= rmUnit

	Events().Emit(EvtRemoveLiquidity, RemoveLiquidityEventData{
		Who: who, Symbol: symbol, RmUnit: rmUnit, RmFis: outFis, RmRtoken: outRtoken,
		NewTotalUnit: pool.TotalUnit,
	})
	return nil
}
