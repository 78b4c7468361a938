package core

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func newTestAddress(b byte) Address {
	var a Address
	a[19] = b
	return a
}

func setupSwapEngine(t *testing.T) (*SwapEngine, *MemLedger) {
	t.Helper()
	resetSingletons()
	led := NewMemLedger()
	InitEvents(nil)
	InitSwapEngine(log.StandardLogger(), led, led.AsRCurrency(), led.AsLpCurrency(), led)
	return SwapEngineManager(), led
}

func TestCreatePoolBootstrap(t *testing.T) {
	eng, led := setupSwapEngine(t)
	who := newTestAddress(1)
	led.SetBalance(who, 10_000)
	led.AsRCurrency().Mint(who, RFIS, 10_000)

	if err := eng.CreatePool(who, RFIS, 1000, 1000); err != nil {
		t.Fatalf("create_pool: %v", err)
	}
	pool := eng.Pool(RFIS)
	if pool.FisBalance != 1000 || pool.RtokenBalance != 1000 || pool.TotalUnit != 1000 {
		t.Fatalf("unexpected bootstrap pool state: %+v", pool)
	}
	if got := led.AsLpCurrency().FreeBalance(who, RFIS); got != 1000 {
		t.Fatalf("expected 1000 lp units minted, got %d", got)
	}
	wantErrIs(t, eng.CreatePool(who, RFIS, 1, 1), ErrPoolAlreadyExist)
}

func TestCreatePoolRequiresStrictlyMoreBalanceThanAmount(t *testing.T) {
	eng, led := setupSwapEngine(t)
	who := newTestAddress(2)
	led.SetBalance(who, 1000) // exactly equal, not strictly greater
	led.AsRCurrency().Mint(who, RFIS, 1000)

	wantErrIs(t, eng.CreatePool(who, RFIS, 1000, 1000), ErrUserFisAmountNotEnough)
}

func TestAddLiquidityBalancedRoundTrip(t *testing.T) {
	eng, led := setupSwapEngine(t)
	bootstrapper := newTestAddress(3)
	led.SetBalance(bootstrapper, 10_000)
	led.AsRCurrency().Mint(bootstrapper, RFIS, 10_000)
	if err := eng.CreatePool(bootstrapper, RFIS, 1000, 1000); err != nil {
		t.Fatalf("create_pool: %v", err)
	}

	lp := newTestAddress(4)
	led.SetBalance(lp, 10_000)
	led.AsRCurrency().Mint(lp, RFIS, 10_000)
	if err := eng.AddLiquidity(lp, RFIS, 100, 100); err != nil {
		t.Fatalf("add_liquidity: %v", err)
	}
	pool := eng.Pool(RFIS)
	if pool.FisBalance != 1100 || pool.RtokenBalance != 1100 {
		t.Fatalf("unexpected reserves after balanced add: %+v", pool)
	}
	if got := led.AsLpCurrency().FreeBalance(lp, RFIS); got != 100 {
		t.Fatalf("expected 100 lp units for a balanced deposit, got %d", got)
	}
}

func TestSwapUpdatesReservesAndEmitsResult(t *testing.T) {
	eng, led := setupSwapEngine(t)
	bootstrapper := newTestAddress(5)
	led.SetBalance(bootstrapper, 10_000)
	led.AsRCurrency().Mint(bootstrapper, RFIS, 10_000)
	if err := eng.CreatePool(bootstrapper, RFIS, 1000, 1000); err != nil {
		t.Fatalf("create_pool: %v", err)
	}

	trader := newTestAddress(6)
	led.SetBalance(trader, 1000)
	if err := eng.Swap(trader, RFIS, 100, 1, true); err != nil {
		t.Fatalf("swap: %v", err)
	}
	pool := eng.Pool(RFIS)
	if pool.FisBalance != 1100 {
		t.Fatalf("expected fis reserve 1100 after swap-in, got %d", pool.FisBalance)
	}
	if pool.RtokenBalance != 918 {
		t.Fatalf("expected rtoken reserve 918 after paying out 82, got %d", pool.RtokenBalance)
	}
	if got := led.AsRCurrency().FreeBalance(trader, RFIS); got != 82 {
		t.Fatalf("expected trader to receive 82 rtoken, got %d", got)
	}
}

func TestSwapRejectsBelowMinOut(t *testing.T) {
	eng, led := setupSwapEngine(t)
	bootstrapper := newTestAddress(7)
	led.SetBalance(bootstrapper, 10_000)
	led.AsRCurrency().Mint(bootstrapper, RFIS, 10_000)
	if err := eng.CreatePool(bootstrapper, RFIS, 1000, 1000); err != nil {
		t.Fatalf("create_pool: %v", err)
	}
	trader := newTestAddress(8)
	led.SetBalance(trader, 1000)
	wantErrIs(t, eng.Swap(trader, RFIS, 100, 1000, true), ErrLessThanMinOutAmount)
}

func TestRemoveLiquidityProportionalRoundTrip(t *testing.T) {
	eng, led := setupSwapEngine(t)
	who := newTestAddress(9)
	led.SetBalance(who, 10_000)
	led.AsRCurrency().Mint(who, RFIS, 10_000)
	if err := eng.CreatePool(who, RFIS, 1000, 1000); err != nil {
		t.Fatalf("create_pool: %v", err)
	}

	if err := eng.RemoveLiquidity(who, RFIS, 1000, 0, true); err != nil {
		t.Fatalf("remove_liquidity: %v", err)
	}
	pool := eng.Pool(RFIS)
	if pool.FisBalance != 0 || pool.RtokenBalance != 0 || pool.TotalUnit != 0 {
		t.Fatalf("expected pool fully drained after removing all units: %+v", pool)
	}
	if got := led.AsLpCurrency().FreeBalance(who, RFIS); got != 0 {
		t.Fatalf("expected lp units fully burned, got %d", got)
	}
}

func TestRemoveLiquidityRejectsSwapUnitAboveRemoveUnit(t *testing.T) {
	eng, led := setupSwapEngine(t)
	who := newTestAddress(10)
	led.SetBalance(who, 10_000)
	led.AsRCurrency().Mint(who, RFIS, 10_000)
	if err := eng.CreatePool(who, RFIS, 1000, 1000); err != nil {
		t.Fatalf("create_pool: %v", err)
	}
	wantErrIs(t, eng.RemoveLiquidity(who, RFIS, 100, 200, true), ErrUnitAmountImproper)
}
