// Package tokenmetadata binds the Metaplex token metadata program: metadata,
// master edition and token record addresses, and decoding of metadata
// accounts.
package tokenmetadata

import (
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var (
	PROGRAM_ID = solana.MustPublicKeyFromString("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

	// AUTH_RULES_PROGRAM_ID is the token authorization rules program that
	// evaluates programmable NFT rule sets.
	AUTH_RULES_PROGRAM_ID = solana.MustPublicKeyFromString("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg")
)
