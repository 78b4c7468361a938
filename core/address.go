package core

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Address is a 20-byte account identifier, independent of source chain.
type Address [20]byte

// Hash is a 32-byte cryptographic digest.
type Hash [32]byte

// AddressZero is the sentinel used for burn destinations and as a
// placeholder recipient where none applies.
var AddressZero = Address{}

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// StringToAddress parses the 0x-prefixed hex form produced by String.
func StringToAddress(s string) (Address, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, err
	}
	if len(raw) != 20 {
		return Address{}, errors.New("address must decode to 20 bytes")
	}
	var out Address
	copy(out[:], raw)
	return out, nil
}

// ModuleAccount derives the deterministic pallet account for an 8-byte
// module identifier, mirroring the teacher's fixed StakingAccount
// derivation (consensus_validator_management.go) but computed from an
// arbitrary id rather than hard-coded hex, since the swap engine and
// the bond lifecycle each need their own custody account.
func ModuleAccount(id [8]byte) Address {
	h := sha256.Sum256(append([]byte("rdex/module/"), id[:]...))
	var out Address
	copy(out[:], h[:20])
	return out
}

// PalletAccount is the process-wide custody account for all swap
// assets, derived once from the fixed 8-byte module id "rdx/swap"
// (spec §5).
var PalletAccount = ModuleAccount([8]byte{'r', 'd', 'x', '/', 's', 'w', 'a', 'p'})
