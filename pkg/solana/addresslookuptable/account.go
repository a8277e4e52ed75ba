package address_lookup_table

import (
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
)

// AddressLookupTab1e1111111111111111111111111
var ProgramKey = ed25519.PublicKey{2, 119, 166, 175, 151, 51, 155, 122, 200, 141, 24, 146, 201, 4, 70, 245, 0, 2, 48, 146, 102, 246, 46, 83, 193, 24, 36, 73, 130, 0, 0, 0}

var (
	ErrInvalidAccountSize = errors.New("invalid address lookup table account size")
	ErrInvalidAccountType = errors.New("invalid account type")
)

const (
	lookupTableDiscriminator = 1

	metadataSize = 56
	maxAddresses = 256

	optionSize = 1
)

// AddressLookupTableAccount is the on-chain state of an address lookup table.
//
// Reference: https://github.com/solana-program/address-lookup-table/blob/main/program/src/state.rs
type AddressLookupTableAccount struct {
	DeactivationSlot           uint64
	LastExtendedSlot           uint64
	LastExtendedSlotStartIndex uint8
	Authority                  ed25519.PublicKey
	Addresses                  []ed25519.PublicKey
}

func (obj *AddressLookupTableAccount) Unmarshal(data []byte) error {
	if len(data) < metadataSize {
		return ErrInvalidAccountSize
	}

	var offset int

	var discriminator uint32
	binary.GetUint32(data[offset:], &discriminator, &offset)
	if discriminator != lookupTableDiscriminator {
		return ErrInvalidAccountType
	}

	binary.GetUint64(data[offset:], &obj.DeactivationSlot, &offset)
	binary.GetUint64(data[offset:], &obj.LastExtendedSlot, &offset)
	binary.GetUint8(data[offset:], &obj.LastExtendedSlotStartIndex, &offset)
	binary.GetOptionalKey32(data[offset:], &obj.Authority, &offset, optionSize)

	offset = metadataSize

	addressBufferSize := len(data) - offset
	if addressBufferSize%ed25519.PublicKeySize != 0 {
		return ErrInvalidAccountSize
	}
	addressCount := addressBufferSize / ed25519.PublicKeySize
	if addressCount > maxAddresses {
		return ErrInvalidAccountSize
	}

	obj.Addresses = make([]ed25519.PublicKey, addressCount)
	for i := 0; i < addressCount; i++ {
		binary.GetKey32(data[offset:], &obj.Addresses[i], &offset)
	}

	return nil
}

// IsActive reports whether the table can still be used by new transactions.
func (obj *AddressLookupTableAccount) IsActive() bool {
	return obj.DeactivationSlot == math.MaxUint64
}

// ToAddressLookupTable converts the account state into the form consumed by
// solana.NewVersionedTransaction.
func (obj *AddressLookupTableAccount) ToAddressLookupTable(address ed25519.PublicKey) solana.AddressLookupTable {
	return solana.AddressLookupTable{
		PublicKey: address,
		Addresses: obj.Addresses,
	}
}
