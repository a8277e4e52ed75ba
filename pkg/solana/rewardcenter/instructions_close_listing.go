package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/system"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

var CloseListingInstructionDiscriminator = []byte{
	0x21, 0x0f, 0xc0, 0x51, 0x4e, 0xaf, 0x9f, 0x61,
}

type CloseListingInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	Listing                ed25519.PublicKey
	RewardCenter           ed25519.PublicKey
	Metadata               ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	TokenMint              ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	TradeState             ed25519.PublicKey
	AhAuctioneerPda        ed25519.PublicKey
	AuctionHouseProgram    ed25519.PublicKey
}

func NewCloseListingInstruction(accounts *CloseListingInstructionAccounts) solana.Instruction {
	var offset int

	data := make([]byte, len(CloseListingInstructionDiscriminator))
	binary.PutDiscriminator(data, CloseListingInstructionDiscriminator, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.Wallet, true),
		solana.NewAccountMeta(accounts.Listing, false),
		solana.NewReadonlyAccountMeta(accounts.RewardCenter, false),
		solana.NewReadonlyAccountMeta(accounts.Metadata, false),
		solana.NewAccountMeta(accounts.TokenAccount, false),
		solana.NewReadonlyAccountMeta(accounts.TokenMint, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, false),
		solana.NewReadonlyAccountMeta(accounts.AuctionHouse, false),
		solana.NewAccountMeta(accounts.AuctionHouseFeeAccount, false),
		solana.NewAccountMeta(accounts.TradeState, false),
		solana.NewReadonlyAccountMeta(accounts.AhAuctioneerPda, false),
		solana.NewReadonlyAccountMeta(auctionHouseProgram(accounts.AuctionHouseProgram), false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
	)
}
