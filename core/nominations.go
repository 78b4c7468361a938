package core

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/stafi-dex/rdex-core/pkg/utils"
)

type poolKey struct {
	Symbol RSymbol
	Pool   string
}

// NominationSnapshot records a pool's validator set as of an era,
// alongside the voter who triggered the overwrite (SPEC_FULL §4.3.1:
// the original records last_voter into the snapshot, not just the
// spec-named validator list).
type NominationSnapshot struct {
	Validators []Address
	UpdatedBy  Address
	Era        uint32
}

// NominationManager tracks the current validator set per pool and an
// era-indexed history, grounded on the teacher's ValidatorManager
// (consensus_validator_management.go) generalized from a flat stake
// registry to per-(symbol, pool) nomination sets.
type NominationManager struct {
	mu sync.Mutex

	logger *log.Logger
	ledger Ledger

	current     map[poolKey][]Address
	initialized map[poolKey]bool
	history     map[poolKey]map[uint32]NominationSnapshot
}

var (
	nomOnce sync.Once
	nomMgr  *NominationManager
)

// InitNominationManager installs the global nomination manager.
func InitNominationManager(lg *log.Logger, ledger Ledger) {
	nomOnce.Do(func() {
		nomMgr = &NominationManager{
			logger: lg, ledger: ledger,
			current:     make(map[poolKey][]Address),
			initialized: make(map[poolKey]bool),
			history:     make(map[poolKey]map[uint32]NominationSnapshot),
		}
	})
}

// NominationManagerInstance returns the singleton nomination manager.
func NominationManagerInstance() *NominationManager { return nomMgr }

// InitNominations sets a pool's initial validator set exactly once
// (root-only, enforced by the caller). A second call on the same pool
// fails with ErrNominationsInitialized.
func (n *NominationManager) InitNominations(symbol RSymbol, pool string, validators []Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := poolKey{Symbol: symbol, Pool: pool}
	bonded := n.ledger.BondedPools(symbol)
	if _, ok := bonded[pool]; !ok {
		return utils.Wrap(ErrPoolNotBonded, "init_nominations")
	}
	if n.initialized[key] {
		return utils.Wrap(ErrNominationsInitialized, "init_nominations")
	}
	cp := append([]Address{}, validators...)
	n.current[key] = cp
	n.initialized[key] = true
	return nil
}

// UpdateNominations snapshots the previous validator set under the
// current era before overwriting it (root-only). Requires a recorded
// last_voter for the pool in the external ledger.
func (n *NominationManager) UpdateNominations(symbol RSymbol, pool string, validators []Address, currentEra uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := poolKey{Symbol: symbol, Pool: pool}
	bonded := n.ledger.BondedPools(symbol)
	if _, ok := bonded[pool]; !ok {
		return utils.Wrap(ErrPoolNotBonded, "update_nominations")
	}
	voter, ok := n.ledger.LastVoter(symbol, pool)
	if !ok {
		return utils.Wrap(ErrNoLastVoter, "update_nominations")
	}

	if old := n.current[key]; len(old) > 0 {
		if n.history[key] == nil {
			n.history[key] = make(map[uint32]NominationSnapshot)
		}
		n.history[key][currentEra] = NominationSnapshot{
			Validators: append([]Address{}, old...),
			UpdatedBy:  voter,
			Era:        currentEra,
		}
	}

	n.current[key] = append([]Address{}, validators...)

	Events().Emit(EvtNominationUpdated, NominationUpdatedEventData{
		Symbol: symbol, Pool: pool, Era: currentEra, Validators: n.current[key],
	})
	return nil
}

// UpdateValidator replaces a single validator in place (root-only). If
// the old validator is not present in the current set, the new one is
// simply appended — a documented no-op on mismatch (spec §9), not an
// error.
func (n *NominationManager) UpdateValidator(symbol RSymbol, pool string, oldValidator, newValidator Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := poolKey{Symbol: symbol, Pool: pool}
	set := n.current[key]
	found := false
	for i, v := range set {
		if v == oldValidator {
			set[i] = newValidator
			found = true
			break
		}
	}
	if !found {
		set = append(set, newValidator)
	}
	n.current[key] = set

	Events().Emit(EvtValidatorUpdated, ValidatorUpdatedEventData{Symbol: symbol, Pool: pool, Old: oldValidator, New: newValidator})
	return nil
}

// CurrentValidators returns a copy of the current validator set for a
// pool.
func (n *NominationManager) CurrentValidators(symbol RSymbol, pool string) []Address {
	n.mu.Lock()
	defer n.mu.Unlock()
	set := n.current[poolKey{Symbol: symbol, Pool: pool}]
	out := make([]Address, len(set))
	copy(out, set)
	return out
}

// SnapshotAt returns the validator-set snapshot recorded for an era, if
// any.
func (n *NominationManager) SnapshotAt(symbol RSymbol, pool string, era uint32) (NominationSnapshot, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	h := n.history[poolKey{Symbol: symbol, Pool: pool}]
	if h == nil {
		return NominationSnapshot{}, false
	}
	snap, ok := h[era]
	return snap, ok
}
