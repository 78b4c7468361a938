package core

import (
	"crypto/sha256"
	"encoding/json"
)

// BondState is the per-(symbol, blockhash, txhash) lifecycle state.
// Tagged with explicit discriminants (spec §9) so the wire encoding is
// stable across schema upgrades regardless of declaration order.
type BondState uint8

const (
	BondStateAbsent  BondState = 0
	BondStateDealing BondState = 1
	BondStateSuccess BondState = 2
	BondStateFail    BondState = 3
)

// BondReason is written exactly once per execution.
type BondReason uint8

const (
	ReasonPass             BondReason = 0
	ReasonInvalidPubkey    BondReason = 1
	ReasonInvalidSignature BondReason = 2
	ReasonRateUnavailable  BondReason = 3
	ReasonOther            BondReason = 4
)

// BondRecord is immutable once inserted; its identity is the content
// hash of its canonical fields (bond_id, spec §9).
type BondRecord struct {
	Bonder    Address
	Symbol    RSymbol
	Pubkey    []byte
	Pool      string
	Blockhash []byte
	Txhash    []byte
	Amount    uint64
}

// canonicalBondEncoding returns a deterministic JSON encoding of a
// BondRecord's content-addressed fields, in declaration order (byte
// slices are base64 strings, the address a JSON array). The hash of
// this encoding is the bond_id, so every node must apply the same
// encoding.
func canonicalBondEncoding(b BondRecord) []byte {
	raw, _ := json.Marshal(struct {
		Bonder    Address
		Symbol    RSymbol
		Pubkey    []byte
		Pool      string
		Blockhash []byte
		Txhash    []byte
		Amount    uint64
	}{b.Bonder, b.Symbol, b.Pubkey, b.Pool, b.Blockhash, b.Txhash, b.Amount})
	return raw
}

// BondID computes the content hash identity of a bond record.
func BondID(b BondRecord) Hash {
	return sha256.Sum256(canonicalBondEncoding(b))
}

// OriginalTxType distinguishes the transaction kind a signature set was
// collected for.
type OriginalTxType uint8

const (
	TxTypeBond   OriginalTxType = 0
	TxTypeUnbond OriginalTxType = 1
)

// BondSwap tracks a cross-chain bond's fee routing and refund window
// (spec §3). Created in Dealing state at submission, finalized at
// execution, may transition to refunded after Expire.
type BondSwap struct {
	Bonder       Address
	SwapFee      uint64
	SwapReceiver Address
	Bridger      Address
	Recipient    []byte
	DestID       uint32
	Expire       uint64
	BondState    BondState
	Refunded     bool
}

// Refundable reports whether the swap can be refunded at block height now.
func (s BondSwap) Refundable(now uint64) bool {
	return !s.Refunded && s.BondState == BondStateFail && s.Expire > 0 && now >= s.Expire
}

// txKey identifies a bond state machine instance.
type txKey struct {
	Symbol    RSymbol
	Blockhash string
	Txhash    string
}

func newTxKey(symbol RSymbol, blockhash, txhash []byte) txKey {
	return txKey{Symbol: symbol, Blockhash: string(blockhash), Txhash: string(txhash)}
}

// bondIDKey identifies a BondSwap/BondReason by (symbol, bond_id).
type bondIDKey struct {
	Symbol RSymbol
	BondID Hash
}
