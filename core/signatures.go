package core

import (
	"bytes"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/stafi-dex/rdex-core/pkg/utils"
)

type sigSetKey struct {
	Symbol     RSymbol
	Era        uint32
	Pool       string
	TxType     OriginalTxType
	ProposalID string
}

type relayerSubmission struct {
	Relayer Address
	TxType  OriginalTxType
}

// SignatureAggregator collects raw signature blobs from relayers for
// heterogeneous (non-substrate-family) chains, tracking a per-relayer
// submission index to prevent double submission (spec §4.3). Modeled
// as its own singleton manager, mirroring the teacher's one-manager-
// per-concern layout even though it is driven by the same submissions
// as the bond lifecycle.
type SignatureAggregator struct {
	mu sync.Mutex

	logger   *log.Logger
	ledger   Ledger
	relayers RelayerSet

	sets      map[sigSetKey][][]byte
	submitted map[sigSetKey]map[relayerSubmission]bool
	enough    map[sigSetKey]bool
}

var (
	sigOnce sync.Once
	sigMgr  *SignatureAggregator
)

// InitSignatureAggregator installs the global signature aggregator.
func InitSignatureAggregator(lg *log.Logger, ledger Ledger, relayers RelayerSet) {
	sigOnce.Do(func() {
		sigMgr = &SignatureAggregator{
			logger: lg, ledger: ledger, relayers: relayers,
			sets:      make(map[sigSetKey][][]byte),
			submitted: make(map[sigSetKey]map[relayerSubmission]bool),
			enough:    make(map[sigSetKey]bool),
		}
	})
}

// SignatureAggregatorManager returns the singleton aggregator.
func SignatureAggregatorManager() *SignatureAggregator { return sigMgr }

// SubmitSignatures appends relayer's signature to the set identified by
// (symbol, era, pool, txType, proposalID), emitting SignaturesEnough
// exactly once on the round the set first reaches the pool's multisig
// threshold (spec §9: equality only, never re-emitted past threshold).
func (s *SignatureAggregator) SubmitSignatures(symbol RSymbol, era uint32, pool string, txType OriginalTxType, proposalID string, relayer Address, signature []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if symbol.ChainType() == ChainSubstrate {
		return utils.Wrap(ErrSignaturesNotRequired, "submit_signatures")
	}
	if !s.relayers.IsRelayer(symbol, relayer) {
		return utils.Wrap(ErrMustBeRelayer, "submit_signatures")
	}
	bonded := s.ledger.BondedPools(symbol)
	if _, ok := bonded[pool]; !ok {
		return utils.Wrap(ErrPoolNotBonded, "submit_signatures")
	}
	currentEra, ok := s.ledger.ChainEra(symbol)
	if !ok {
		return utils.Wrap(ErrNoCurrentEra, "submit_signatures")
	}
	if era > currentEra {
		return utils.Wrap(ErrInvalidEra, "submit_signatures")
	}

	key := sigSetKey{Symbol: symbol, Era: era, Pool: pool, TxType: txType, ProposalID: proposalID}
	if s.submitted[key] == nil {
		s.submitted[key] = make(map[relayerSubmission]bool)
	}
	sub := relayerSubmission{Relayer: relayer, TxType: txType}
	if s.submitted[key][sub] {
		return utils.Wrap(ErrSignatureRepeated, "submit_signatures")
	}
	for _, existing := range s.sets[key] {
		if bytes.Equal(existing, signature) {
			return utils.Wrap(ErrSignatureRepeated, "submit_signatures")
		}
	}

	s.submitted[key][sub] = true
	s.sets[key] = append(s.sets[key], signature)

	Events().Emit(EvtSubmitSignatures, SubmitSignaturesEventData{
		Symbol: symbol, Era: era, Pool: pool, ProposalID: proposalID, Relayer: relayer,
	})

	if threshold, ok := s.ledger.MultiThreshold(symbol, pool); ok && !s.enough[key] {
		if len(s.sets[key]) == int(threshold) {
			s.enough[key] = true
			Events().Emit(EvtSignaturesEnough, SignaturesEnoughEventData{
				Symbol: symbol, Era: era, Pool: pool, ProposalID: proposalID,
			})
		}
	}
	return nil
}

// SignatureCount returns the number of signatures collected so far for
// a signature set.
func (s *SignatureAggregator) SignatureCount(symbol RSymbol, era uint32, pool string, txType OriginalTxType, proposalID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sigSetKey{Symbol: symbol, Era: era, Pool: pool, TxType: txType, ProposalID: proposalID}
	return len(s.sets[key])
}
