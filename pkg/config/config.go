// Package config loads the swap/bond core's global configuration state
// (spec §3: switches, fees, limits, commission, proxy accounts, relay
// fees receiver) from a YAML file via viper, with an optional .env
// overlay, and applies it to the running core.BondConfig singleton.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stafi-dex/rdex-core/core"
	"github.com/stafi-dex/rdex-core/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// SymbolFees holds the configured fee/limit/switch overrides for one
// RSymbol, keyed in the YAML file by its display form (e.g. "rDOT",
// matched case-insensitively). A zero field means "leave the running
// value alone" — Apply overrides a parameter only with a non-zero
// value, which may be above or below its core.BondConfig default; it
// never resets one to zero.
type SymbolFees struct {
	RtokenBondSwitch     *bool  `mapstructure:"rtoken_bond_switch"`
	BondFees             uint64 `mapstructure:"bond_fees"`
	UnbondFees           uint64 `mapstructure:"unbond_fees"`
	PoolBalanceLimit     uint64 `mapstructure:"pool_balance_limit"`
	BondSwapRefundExpire uint64 `mapstructure:"bond_swap_refund_expire"`
}

// Config mirrors spec §3's "Configuration state" as a loadable file:
// the global bond switch, the unbond commission ratio, the proxy
// account set, the relay fees receiver, and per-symbol fee/limit
// overrides.
type Config struct {
	BondSwitch        bool                  `mapstructure:"bond_switch"`
	UnbondCommission  uint32                `mapstructure:"unbond_commission"`
	ProxyAccounts     []string              `mapstructure:"proxy_accounts"`
	RelayFeesReceiver string                `mapstructure:"relay_fees_receiver"`
	Symbols           map[string]SymbolFees `mapstructure:"symbols"`
}

// AppConfig holds the configuration loaded by the most recent Load call.
var AppConfig Config

// Load reads "<name>.yaml" from configPath via viper (teacher:
// pkg/config/config.go), first merging a sibling ".env" file if one
// exists via godotenv (teacher: cmd/cli/*.go call godotenv.Load()
// before reading flags) so deployment secrets like the relay fees
// receiver address can be injected without editing the checked-in
// YAML. A missing .env file is not an error.
func Load(configPath, name string) (*Config, error) {
	_ = godotenv.Load(configPath + "/.env")

	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(configPath)
	v.SetConfigType("yaml")
	v.SetDefault("bond_switch", true)
	v.SetDefault("unbond_commission", core.DefaultUnbondCommission)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	AppConfig = cfg
	return &cfg, nil
}

// LoadFromEnv loads "<RDEX_CONFIG_NAME>.yaml" (default "default") from
// RDEX_CONFIG_PATH (default "config").
func LoadFromEnv() (*Config, error) {
	path := utils.EnvOrDefault("RDEX_CONFIG_PATH", "config")
	name := utils.EnvOrDefault("RDEX_CONFIG_NAME", "default")
	return Load(path, name)
}

// Apply seeds the package-level core.BondConfig singleton (installed
// beforehand via core.InitBondConfig) from a loaded Config. Unknown
// symbol names are skipped rather than aborting the whole load, since a
// forward-compatible config file may name a symbol this build doesn't
// recognize yet.
func (c *Config) Apply() error {
	cfg := core.Config()
	if cfg == nil {
		return fmt.Errorf("core config not initialised")
	}

	cfg.SetBondSwitch(c.BondSwitch)
	if c.UnbondCommission > 0 {
		cfg.SetUnbondCommission(c.UnbondCommission)
	}
	for _, raw := range c.ProxyAccounts {
		addr, err := core.StringToAddress(raw)
		if err != nil {
			return utils.Wrap(err, "apply config: proxy account")
		}
		cfg.AddProxyAccount(addr)
	}
	if c.RelayFeesReceiver != "" {
		addr, err := core.StringToAddress(c.RelayFeesReceiver)
		if err != nil {
			return utils.Wrap(err, "apply config: relay fees receiver")
		}
		cfg.SetRelayFeesReceiver(addr)
	}

	for name, sf := range c.Symbols {
		symbol, ok := core.ParseRSymbol(name)
		if !ok {
			// viper lower-cases map keys, so "rDOT" in the file arrives
			// here as "rdot".
			for s := core.RFIS; s <= core.RBNB; s++ {
				if strings.EqualFold(s.String(), name) {
					symbol, ok = s, true
					break
				}
			}
		}
		if !ok {
			continue
		}
		if sf.RtokenBondSwitch != nil {
			cfg.SetRtokenBondSwitch(symbol, *sf.RtokenBondSwitch)
		}
		if sf.BondFees > 0 {
			cfg.SetBondFees(symbol, sf.BondFees)
		}
		if sf.UnbondFees > 0 {
			cfg.SetUnbondFees(symbol, sf.UnbondFees)
		}
		if sf.PoolBalanceLimit > 0 {
			cfg.SetPoolBalanceLimit(symbol, sf.PoolBalanceLimit)
		}
		if sf.BondSwapRefundExpire > 0 {
			cfg.SetBondSwapRefundExpire(symbol, sf.BondSwapRefundExpire)
		}
	}
	return nil
}
