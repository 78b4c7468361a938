package core

// ChainType distinguishes the signature and message-encoding family a
// symbol's source chain belongs to. Ethereum-family symbols sign the
// ASCII-hex of the encoded account id; every other family signs the raw
// encoding (spec §4.3).
type ChainType uint8

const (
	ChainNative ChainType = iota
	ChainSubstrate
	ChainEthereum
	// ChainCosmos is a fourth illustrative family: the original
	// (node/pallets/rtoken/series/src/lib.rs) enumerates more than the
	// three families spec.md calls out "at least"; kept here so
	// ChainType exercises real enum dispatch rather than a boolean.
	ChainCosmos
)

// RSymbol is the opaque enumerated identifier distinguishing asset
// families (FIS, rATOM, rDOT, rMATIC, ...). It is the primary partition
// key for pools and bond records.
type RSymbol uint8

const (
	RFIS RSymbol = iota
	RATOM
	RDOT
	RKSM
	RSOL
	RMATIC
	RBNB
)

var chainTypes = map[RSymbol]ChainType{
	RFIS:   ChainNative,
	RATOM:  ChainCosmos,
	RDOT:   ChainSubstrate,
	RKSM:   ChainSubstrate,
	RSOL:   ChainNative,
	RMATIC: ChainEthereum,
	RBNB:   ChainEthereum,
}

// ChainType reports the signature/message family for the symbol.
// Unregistered symbols report ChainSubstrate, matching the original's
// conservative default for unknown source chains.
func (s RSymbol) ChainType() ChainType {
	if ct, ok := chainTypes[s]; ok {
		return ct
	}
	return ChainSubstrate
}

// ParseRSymbol reverses String, for config files and CLIs that name
// symbols by their display form (e.g. "rDOT").
func ParseRSymbol(s string) (RSymbol, bool) {
	switch s {
	case "FIS":
		return RFIS, true
	case "rATOM":
		return RATOM, true
	case "rDOT":
		return RDOT, true
	case "rKSM":
		return RKSM, true
	case "rSOL":
		return RSOL, true
	case "rMATIC":
		return RMATIC, true
	case "rBNB":
		return RBNB, true
	default:
		return 0, false
	}
}

func (s RSymbol) String() string {
	switch s {
	case RFIS:
		return "FIS"
	case RATOM:
		return "rATOM"
	case RDOT:
		return "rDOT"
	case RKSM:
		return "rKSM"
	case RSOL:
		return "rSOL"
	case RMATIC:
		return "rMATIC"
	case RBNB:
		return "rBNB"
	default:
		return "rUNKNOWN"
	}
}
