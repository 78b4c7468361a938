package core

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func setupBondLifecycle(t *testing.T, bridge Bridge) (*BondLifecycle, *MemLedger) {
	t.Helper()
	resetSingletons()
	led := NewMemLedger()
	InitEvents(nil)
	InitBondConfig(log.StandardLogger())
	InitBondLifecycle(log.StandardLogger(), led, led.AsRCurrency(), FixedRateOracle{Numerator: 1, Denominator: 1},
		led, MapRelayerSet{}, bridge, AlwaysPassVerifier{}, NoopClaimTracker{}, 1)
	return BondLifecycleManager(), led
}

func TestLiquidityBondHappyPath(t *testing.T) {
	bl, led := setupBondLifecycle(t, newFakeBridge(newTestAddress(99), newTestAddress(98)))
	who := newTestAddress(1)
	receiver := newTestAddress(2)
	led.SetBonded(RDOT, "pool-a")
	Config().SetRelayFeesReceiver(receiver)
	led.SetBalance(who, Config().BondFees(RDOT)+1)

	if _, err := bl.LiquidityBond(who, RDOT, []byte("pubkey"), "pool-a", []byte("blockhash-1"), []byte("txhash-1"), 1000, []byte("sig")); err != nil {
		t.Fatalf("liquidity_bond: %v", err)
	}
	if bl.BondState(RDOT, []byte("blockhash-1"), []byte("txhash-1")) != BondStateDealing {
		t.Fatalf("expected Dealing state after submit")
	}
	if led.FreeBalance(receiver) != Config().BondFees(RDOT) {
		t.Fatalf("expected bond fee routed to receiver, got %d", led.FreeBalance(receiver))
	}

	if err := bl.ExecuteBondRecord(RDOT, []byte("blockhash-1"), []byte("txhash-1"), ReasonPass, 100); err != nil {
		t.Fatalf("execute_bond_record: %v", err)
	}
	if bl.BondState(RDOT, []byte("blockhash-1"), []byte("txhash-1")) != BondStateSuccess {
		t.Fatalf("expected Success state after execute")
	}
	if got := led.AsRCurrency().FreeBalance(who, RDOT); got != 1000 {
		t.Fatalf("expected 1000 rtoken minted at 1:1 rate, got %d", got)
	}
	if bl.BondCountOf(who) != 1 {
		t.Fatalf("expected bond count 1, got %d", bl.BondCountOf(who))
	}
}

func TestLiquidityBondFailureThenRetryMintsNewBondID(t *testing.T) {
	bl, led := setupBondLifecycle(t, newFakeBridge(newTestAddress(99), newTestAddress(98)))
	who := newTestAddress(3)
	led.SetBonded(RDOT, "pool-a")
	Config().SetRelayFeesReceiver(newTestAddress(4))
	led.SetBalance(who, 10*Config().BondFees(RDOT))

	firstID, err := bl.LiquidityBond(who, RDOT, []byte("pk"), "pool-a", []byte("bh"), []byte("th"), 1000, []byte("sig"))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := bl.ExecuteBondRecord(RDOT, []byte("bh"), []byte("th"), ReasonOther, 100); err != nil {
		t.Fatalf("execute (reject): %v", err)
	}
	if bl.BondState(RDOT, []byte("bh"), []byte("th")) != BondStateFail {
		t.Fatalf("expected Fail state after a rejected execution")
	}

	// retry on the same (symbol,blockhash,txhash) with a corrected
	// amount: Fail is retriable, but the bond_id is content-addressed so
	// an unchanged amount would collide with the already-recorded
	// bond — the retry must carry a materially different record.
	secondID, err := bl.LiquidityBond(who, RDOT, []byte("pk"), "pool-a", []byte("bh"), []byte("th"), 2000, []byte("sig"))
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if secondID == firstID {
		t.Fatalf("expected retry to mint a new bond_id distinct from the failed one")
	}
	if err := bl.ExecuteBondRecord(RDOT, []byte("bh"), []byte("th"), ReasonPass, 101); err != nil {
		t.Fatalf("execute (retry accept): %v", err)
	}
	if got := led.AsRCurrency().FreeBalance(who, RDOT); got != 2000 {
		t.Fatalf("expected 2000 rtoken minted from the retried bond, got %d", got)
	}
}

func TestLiquidityBondRejectsRepeatSubmission(t *testing.T) {
	bl, led := setupBondLifecycle(t, newFakeBridge(newTestAddress(99), newTestAddress(98)))
	who := newTestAddress(5)
	led.SetBonded(RDOT, "pool-a")
	Config().SetRelayFeesReceiver(newTestAddress(6))
	led.SetBalance(who, 10*Config().BondFees(RDOT))

	if _, err := bl.LiquidityBond(who, RDOT, []byte("pk"), "pool-a", []byte("bh2"), []byte("th2"), 1000, []byte("sig")); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := bl.LiquidityBond(who, RDOT, []byte("pk"), "pool-a", []byte("bh2"), []byte("th2"), 1000, []byte("sig"))
	wantErrIs(t, err, ErrTxhashUnavailable)
}

func TestCrossChainBondSwapRefund(t *testing.T) {
	bridger := newTestAddress(10)
	receiver := newTestAddress(11)
	bridge := newFakeBridge(bridger, receiver)
	bridge.setResource(RMATIC, 7)
	bridge.swapFee = 500

	bl, led := setupBondLifecycle(t, bridge)
	Config().SetBondFees(RMATIC, 0)
	Config().SetBondSwapRefundExpire(RMATIC, 10)

	who := newTestAddress(12)
	led.SetBonded(RMATIC, "pool-b")
	led.SetBalance(who, 10_000)

	bondID, err := bl.LiquidityBondAndSwap(who, RMATIC, []byte("pk"), "pool-b", []byte("bh3"), []byte("th3"), 1000, []byte("sig"),
		CrossChainParams{DestID: 42, Recipient: []byte("recipient-on-dest")})
	if err != nil {
		t.Fatalf("liquidity_bond_and_swap: %v", err)
	}
	if got := led.FreeBalance(bridger); got != 500 {
		t.Fatalf("expected swap fee 500 escrowed at bridger, got %d", got)
	}

	if err := bl.ExecuteBondRecord(RMATIC, []byte("bh3"), []byte("th3"), ReasonOther, 100); err != nil {
		t.Fatalf("execute (reject): %v", err)
	}

	wantErrIs(t, bl.RefundSwapFee(RMATIC, bondID, 105), ErrNotRefundable)
	if err := bl.RefundSwapFee(RMATIC, bondID, 110); err != nil {
		t.Fatalf("refund once expire has elapsed should succeed: %v", err)
	}
	if got := led.FreeBalance(who); got != 10_000-500+500 {
		t.Fatalf("expected swap fee refunded back to bonder, balance=%d", got)
	}
	wantErrIs(t, bl.RefundSwapFee(RMATIC, bondID, 200), ErrNotRefundable)
}

func TestCrossChainBondExecutesMintAndBridgeTransfer(t *testing.T) {
	bridger := newTestAddress(20)
	receiver := newTestAddress(21)
	bridge := newFakeBridge(bridger, receiver)
	bridge.setResource(RMATIC, 9)

	bl, led := setupBondLifecycle(t, bridge)
	Config().SetBondFees(RMATIC, 0)

	who := newTestAddress(22)
	led.SetBonded(RMATIC, "pool-c")
	led.SetBalance(who, 10_000)

	if _, err := bl.LiquidityBondAndSwap(who, RMATIC, []byte("pk"), "pool-c", []byte("bh4"), []byte("th4"), 1000, []byte("sig"),
		CrossChainParams{DestID: 42, Recipient: []byte("dest-recipient")}); err != nil {
		t.Fatalf("liquidity_bond_and_swap: %v", err)
	}
	if err := bl.ExecuteBondRecord(RMATIC, []byte("bh4"), []byte("th4"), ReasonPass, 100); err != nil {
		t.Fatalf("execute (accept): %v", err)
	}
	if len(bridge.transfers) != 1 {
		t.Fatalf("expected exactly one bridge transfer, got %d", len(bridge.transfers))
	}
	if bridge.transfers[0].Amount.Uint64() != 1000 {
		t.Fatalf("expected bridged rbalance 1000 at 1:1 rate, got %s", bridge.transfers[0].Amount)
	}
}
