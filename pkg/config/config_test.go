package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/stafi-dex/rdex-core/core"
)

const yamlFixture = `
bond_switch: true
unbond_commission: 2500000
relay_fees_receiver: "0x0101010101010101010101010101010101010101"
proxy_accounts:
  - "0x0202020202020202020202020202020202020202"
symbols:
  rDOT:
    bond_fees: 999
    unbond_fees: 1999
    pool_balance_limit: 5000000
    rtoken_bond_switch: false
`

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(yamlFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	core.InitBondConfig(log.New())

	cfg, err := Load(dir, "test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}

	bc := core.Config()
	if !bc.BondSwitch() {
		t.Fatal("expected bond switch on")
	}
	if bc.UnbondCommission() != 2500000 {
		t.Fatalf("unbond commission = %d, want 2500000", bc.UnbondCommission())
	}
	if got := bc.BondFees(core.RDOT); got != 999 {
		t.Fatalf("bond fees = %d, want 999", got)
	}
	if got := bc.UnbondFees(core.RDOT); got != 1999 {
		t.Fatalf("unbond fees = %d, want 1999", got)
	}
	if got := bc.PoolBalanceLimit(core.RDOT); got != 5000000 {
		t.Fatalf("pool balance limit = %d, want 5000000", got)
	}
	if bc.RtokenBondSwitch(core.RDOT) {
		t.Fatal("expected rtoken bond switch for rDOT to be off")
	}
	// A symbol never mentioned in the file keeps the open-by-default switch.
	if !bc.RtokenBondSwitch(core.RKSM) {
		t.Fatal("expected rtoken bond switch for rKSM to remain on")
	}

	receiver, ok := bc.RelayFeesReceiver()
	if !ok {
		t.Fatal("expected relay fees receiver set")
	}
	wantReceiver, _ := core.StringToAddress("0x0101010101010101010101010101010101010101")
	if receiver != wantReceiver {
		t.Fatalf("relay fees receiver = %s, want %s", receiver, wantReceiver)
	}

	wantProxy, _ := core.StringToAddress("0x0202020202020202020202020202020202020202")
	if !bc.IsProxyAccount(wantProxy) {
		t.Fatal("expected proxy account set")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("bond_switch: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RDEX_CONFIG_PATH", dir)
	t.Setenv("RDEX_CONFIG_NAME", "default")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load from env: %v", err)
	}
	if cfg.BondSwitch {
		t.Fatal("expected bond_switch false from fixture")
	}
}
