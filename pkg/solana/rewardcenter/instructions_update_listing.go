package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
)

var UpdateListingInstructionDiscriminator = []byte{
	0xc0, 0xae, 0xd2, 0x44, 0x74, 0x28, 0xf2, 0xfd,
}

const (
	UpdateListingInstructionArgsSize = 8 // new_price
)

type UpdateListingInstructionArgs struct {
	NewPrice uint64
}

type UpdateListingInstructionAccounts struct {
	Wallet              ed25519.PublicKey
	Listing             ed25519.PublicKey
	RewardCenter        ed25519.PublicKey
	AuctionHouse        ed25519.PublicKey
	Metadata            ed25519.PublicKey
	TokenAccount        ed25519.PublicKey
	AuctionHouseProgram ed25519.PublicKey
}

func NewUpdateListingInstruction(
	accounts *UpdateListingInstructionAccounts,
	args *UpdateListingInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(UpdateListingInstructionDiscriminator)+
			UpdateListingInstructionArgsSize)

	binary.PutDiscriminator(data, UpdateListingInstructionDiscriminator, &offset)
	binary.PutUint64(data[offset:], args.NewPrice, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.Wallet, true),
		solana.NewAccountMeta(accounts.Listing, false),
		solana.NewReadonlyAccountMeta(accounts.RewardCenter, false),
		solana.NewReadonlyAccountMeta(accounts.AuctionHouse, false),
		solana.NewReadonlyAccountMeta(accounts.Metadata, false),
		solana.NewAccountMeta(accounts.TokenAccount, false),
		solana.NewReadonlyAccountMeta(auctionHouseProgram(accounts.AuctionHouseProgram), false),
	)
}
