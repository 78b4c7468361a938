package core

import "math/big"

// fakeBridge is a minimal test double for Bridge: one resource id per
// symbol, a fixed swap fee/receiver/bridger, and a call log for
// TransferFungible so cross-chain bond tests can assert the mint
// landed on the right destination.
type fakeBridge struct {
	resources map[RSymbol][32]byte
	swapFee   uint64
	receiver  Address
	bridger   Address

	transfers []fakeBridgeTransfer
}

type fakeBridgeTransfer struct {
	Bonder    Address
	DestID    uint32
	Resource  [32]byte
	Recipient []byte
	Amount    *big.Int
}

func newFakeBridge(bridger, receiver Address) *fakeBridge {
	return &fakeBridge{
		resources: make(map[RSymbol][32]byte),
		swapFee:   0,
		receiver:  receiver,
		bridger:   bridger,
	}
}

func (f *fakeBridge) setResource(symbol RSymbol, id byte) {
	var r [32]byte
	r[0] = id
	f.resources[symbol] = r
}

func (f *fakeBridge) Swapable(recipient []byte, destID uint32) (uint64, Address, Address, error) {
	return f.swapFee, f.receiver, f.bridger, nil
}

func (f *fakeBridge) RsymbolResource(symbol RSymbol) ([32]byte, bool) {
	r, ok := f.resources[symbol]
	return r, ok
}

func (f *fakeBridge) TransferFungible(bonder Address, destID uint32, resource [32]byte, recipient []byte, amount *big.Int) error {
	f.transfers = append(f.transfers, fakeBridgeTransfer{Bonder: bonder, DestID: destID, Resource: resource, Recipient: recipient, Amount: amount})
	return nil
}
