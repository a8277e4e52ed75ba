// Package auctionhouse derives the program addresses of an auction house
// program. The Metaplex deployment and its forks share the same seeds.
package auctionhouse

import (
	"crypto/ed25519"
	"math"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var (
	// PROGRAM_ID is the Metaplex deployment. It is only the fallback of the
	// derivation helpers; Night Market runs its own fork.
	PROGRAM_ID = solana.MustPublicKeyFromString("hausS13jsjafwWwGqZTUQRmWyvyxn9EQpqMwV1PBBmk")
)

// AuctioneerPrice is the trade state price used when an auctioneer program
// settles the trade on the seller's behalf. The real price lives in the
// auctioneer's own accounts.
const AuctioneerPrice uint64 = math.MaxUint64

func programOrDefault(program ed25519.PublicKey) ed25519.PublicKey {
	if len(program) == 0 {
		return PROGRAM_ID
	}
	return program
}
