package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Default fee parameters (spec §3). Fees are denominated in the
// smallest native unit; unbond commission is expressed in parts per
// billion.
const (
	DefaultBondFees        uint64 = 1_500_000_000_000
	DefaultUnbondFees      uint64 = 3_000_000_000_000
	DefaultUnbondCommission uint32 = 2_000_000 // 0.2%
	CommissionDenominator   uint64 = 1_000_000_000
)

// BondConfig holds the global mutable configuration singletons: the
// global bond switch, per-symbol switches/fees/limits, the unbond
// commission ratio, the proxy-account set and the relay fees receiver.
// Root-gated writers, unrestricted readers; no locking beyond the
// mutex below is needed since writes and reads both occur inside the
// host's serialized operation pipeline (spec §9), mirroring the
// teacher's singleton managers (dao_staking.go, stake_penalty.go).
type BondConfig struct {
	mu sync.RWMutex

	logger *log.Logger

	bondSwitch       bool
	rtokenBondSwitch map[RSymbol]bool
	bondFees         map[RSymbol]uint64
	unbondFees       map[RSymbol]uint64
	poolBalanceLimit map[RSymbol]uint64
	refundExpire     map[RSymbol]uint64
	unbondCommission uint32
	proxyAccounts    map[Address]struct{}
	relayReceiver    *Address
}

var (
	configOnce sync.Once
	configMgr  *BondConfig
)

// InitBondConfig installs the global configuration singleton with the
// default fee parameters and the global switch turned on.
func InitBondConfig(lg *log.Logger) {
	configOnce.Do(func() {
		configMgr = &BondConfig{
			logger:           lg,
			bondSwitch:       true,
			rtokenBondSwitch: make(map[RSymbol]bool),
			bondFees:         make(map[RSymbol]uint64),
			unbondFees:       make(map[RSymbol]uint64),
			poolBalanceLimit: make(map[RSymbol]uint64),
			refundExpire:     make(map[RSymbol]uint64),
			unbondCommission: DefaultUnbondCommission,
			proxyAccounts:    make(map[Address]struct{}),
		}
	})
}

// Config returns the singleton configuration manager.
func Config() *BondConfig { return configMgr }

func (c *BondConfig) SetBondSwitch(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bondSwitch = on
}

func (c *BondConfig) BondSwitch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bondSwitch
}

func (c *BondConfig) SetRtokenBondSwitch(symbol RSymbol, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rtokenBondSwitch[symbol] = on
}

// RtokenBondSwitch defaults to on for a symbol that has never been
// toggled, matching the teacher's permissive-unless-explicitly-closed
// defaults elsewhere (e.g. AuthorizedRelayers requires explicit entry
// but switches here default open since bonding is the common path).
func (c *BondConfig) RtokenBondSwitch(symbol RSymbol) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	on, set := c.rtokenBondSwitch[symbol]
	if !set {
		return true
	}
	return on
}

// SetBondFees is proxy-only per spec §6.
func (c *BondConfig) SetBondFees(symbol RSymbol, fees uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bondFees[symbol] = fees
	Events().Emit(EvtBondFeesSet, BondFeesSetEventData{Symbol: symbol, Fees: fees})
}

func (c *BondConfig) BondFees(symbol RSymbol) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.bondFees[symbol]; ok {
		return f
	}
	return DefaultBondFees
}

// SetUnbondFees is proxy-only per spec §6.
func (c *BondConfig) SetUnbondFees(symbol RSymbol, fees uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unbondFees[symbol] = fees
	Events().Emit(EvtUnbondFeesSet, UnbondFeesSetEventData{Symbol: symbol, Fees: fees})
}

func (c *BondConfig) UnbondFees(symbol RSymbol) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.unbondFees[symbol]; ok {
		return f
	}
	return DefaultUnbondFees
}

func (c *BondConfig) SetPoolBalanceLimit(symbol RSymbol, limit uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poolBalanceLimit[symbol] = limit
	Events().Emit(EvtPoolBalanceLimitUpdated, PoolBalanceLimitUpdatedEventData{Symbol: symbol, Limit: limit})
}

// PoolBalanceLimit returns 0 (no limit configured) if never set.
func (c *BondConfig) PoolBalanceLimit(symbol RSymbol) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.poolBalanceLimit[symbol]
}

func (c *BondConfig) SetUnbondCommission(ppb uint32) {
	c.mu.Lock()
	old := c.unbondCommission
	c.unbondCommission = ppb
	c.mu.Unlock()
	Events().Emit(EvtUnbondCommissionUpdated, UnbondCommissionUpdatedEventData{OldCommission: old, NewCommission: ppb})
}

func (c *BondConfig) UnbondCommission() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unbondCommission
}

func (c *BondConfig) SetBondSwapRefundExpire(symbol RSymbol, blocks uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refundExpire[symbol] = blocks
}

func (c *BondConfig) BondSwapRefundExpire(symbol RSymbol) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.refundExpire[symbol]
	return v, ok
}

func (c *BondConfig) AddProxyAccount(addr Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proxyAccounts[addr] = struct{}{}
}

func (c *BondConfig) RemoveProxyAccount(addr Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.proxyAccounts, addr)
}

func (c *BondConfig) IsProxyAccount(addr Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.proxyAccounts[addr]
	return ok
}

func (c *BondConfig) SetRelayFeesReceiver(addr Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := addr
	c.relayReceiver = &a
}

func (c *BondConfig) RelayFeesReceiver() (Address, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.relayReceiver == nil {
		return Address{}, false
	}
	return *c.relayReceiver, true
}
