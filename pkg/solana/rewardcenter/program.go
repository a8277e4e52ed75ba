// Package rewardcenter binds the Night Market reward center program, an
// auctioneer for the auction house that pays reward tokens on every sale.
package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/auctionhouse"
)

var (
	PROGRAM_ID = solana.MustPublicKeyFromString("rwdD3F6CgoCAoVaxcitXAeWRjQdiGc5AVABKCpQSMfd")
)

func auctionHouseProgram(program ed25519.PublicKey) ed25519.PublicKey {
	if len(program) == 0 {
		return auctionhouse.PROGRAM_ID
	}
	return program
}
