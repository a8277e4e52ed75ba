package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var (
	metadataPrefix    = []byte("metadata")
	editionPrefix     = []byte("edition")
	tokenRecordPrefix = []byte("token_record")
)

// GetMetadataAddress derives ["metadata", program, mint].
func GetMetadataAddress(mint ed25519.PublicKey) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		metadataPrefix,
		PROGRAM_ID,
		mint,
	)
}

// GetMasterEditionAddress derives ["metadata", program, mint, "edition"].
func GetMasterEditionAddress(mint ed25519.PublicKey) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		metadataPrefix,
		PROGRAM_ID,
		mint,
		editionPrefix,
	)
}

// GetTokenRecordAddress derives ["metadata", program, mint, "token_record", tokenAccount].
func GetTokenRecordAddress(mint, tokenAccount ed25519.PublicKey) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		metadataPrefix,
		PROGRAM_ID,
		mint,
		tokenRecordPrefix,
		tokenAccount,
	)
}
