// Package chain isolates the on-chain reads needed to build marketplace
// instructions behind a single interface.
package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	address_lookup_table "github.com/motleylabs/mtly-nightmarket-go/pkg/solana/addresslookuptable"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/tokenmetadata"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidOwner    = errors.New("account has an unexpected owner")
)

type Provider interface {
	// GetAccountInfo returns the current state of an account, or
	// ErrAccountNotFound if it does not exist.
	GetAccountInfo(ctx context.Context, address ed25519.PublicKey) (solana.AccountInfo, error)
}

// AccountExists reports whether an account exists at the address.
func AccountExists(ctx context.Context, provider Provider, address ed25519.PublicKey) (bool, error) {
	_, err := provider.GetAccountInfo(ctx, address)
	if err == ErrAccountNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// GetMetadata fetches and decodes the token metadata account at the address.
func GetMetadata(ctx context.Context, provider Provider, address ed25519.PublicKey) (*tokenmetadata.Metadata, error) {
	info, err := provider.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(info.Owner, tokenmetadata.PROGRAM_ID) {
		return nil, errors.Wrapf(ErrInvalidOwner, "metadata %s is owned by %s", base58.Encode(address), base58.Encode(info.Owner))
	}

	var metadata tokenmetadata.Metadata
	if err := metadata.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(err, "failed to decode metadata %s", base58.Encode(address))
	}
	return &metadata, nil
}

// GetAddressLookupTable fetches an active address lookup table.
func GetAddressLookupTable(ctx context.Context, provider Provider, address ed25519.PublicKey) (solana.AddressLookupTable, error) {
	info, err := provider.GetAccountInfo(ctx, address)
	if err != nil {
		return solana.AddressLookupTable{}, err
	}

	if !bytes.Equal(info.Owner, address_lookup_table.ProgramKey) {
		return solana.AddressLookupTable{}, errors.Wrapf(ErrInvalidOwner, "lookup table %s is owned by %s", base58.Encode(address), base58.Encode(info.Owner))
	}

	var table address_lookup_table.AddressLookupTableAccount
	if err := table.Unmarshal(info.Data); err != nil {
		return solana.AddressLookupTable{}, errors.Wrapf(err, "failed to decode lookup table %s", base58.Encode(address))
	}
	if !table.IsActive() {
		return solana.AddressLookupTable{}, errors.Errorf("lookup table %s is deactivated", base58.Encode(address))
	}

	return table.ToAddressLookupTable(address), nil
}
