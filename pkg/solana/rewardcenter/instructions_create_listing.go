package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/system"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

var CreateListingInstructionDiscriminator = []byte{
	0x12, 0xa8, 0x2d, 0x18, 0xbf, 0x1f, 0x75, 0x36,
}

const (
	CreateListingInstructionArgsSize = (8 + // price
		8 + // token_size
		1 + // trade_state_bump
		1 + // free_trade_state_bump
		1) // program_as_signer_bump
)

type CreateListingInstructionArgs struct {
	Price               uint64
	TokenSize           uint64
	TradeStateBump      uint8
	FreeTradeStateBump  uint8
	ProgramAsSignerBump uint8
}

type CreateListingInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	Listing                ed25519.PublicKey
	RewardCenter           ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	Metadata               ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	SellerTradeState       ed25519.PublicKey
	FreeSellerTradeState   ed25519.PublicKey
	AhAuctioneerPda        ed25519.PublicKey
	ProgramAsSigner        ed25519.PublicKey
	AuctionHouseProgram    ed25519.PublicKey
}

func NewCreateListingInstruction(
	accounts *CreateListingInstructionAccounts,
	args *CreateListingInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(CreateListingInstructionDiscriminator)+
			CreateListingInstructionArgsSize)

	binary.PutDiscriminator(data, CreateListingInstructionDiscriminator, &offset)
	binary.PutUint64(data[offset:], args.Price, &offset)
	binary.PutUint64(data[offset:], args.TokenSize, &offset)
	binary.PutUint8(data[offset:], args.TradeStateBump, &offset)
	binary.PutUint8(data[offset:], args.FreeTradeStateBump, &offset)
	binary.PutUint8(data[offset:], args.ProgramAsSignerBump, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.Wallet, true),
		solana.NewAccountMeta(accounts.Listing, false),
		solana.NewReadonlyAccountMeta(accounts.RewardCenter, false),
		solana.NewAccountMeta(accounts.TokenAccount, false),
		solana.NewReadonlyAccountMeta(accounts.Metadata, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, false),
		solana.NewReadonlyAccountMeta(accounts.AuctionHouse, false),
		solana.NewAccountMeta(accounts.AuctionHouseFeeAccount, false),
		solana.NewAccountMeta(accounts.SellerTradeState, false),
		solana.NewAccountMeta(accounts.FreeSellerTradeState, false),
		solana.NewReadonlyAccountMeta(accounts.AhAuctioneerPda, false),
		solana.NewReadonlyAccountMeta(accounts.ProgramAsSigner, false),
		solana.NewReadonlyAccountMeta(auctionHouseProgram(accounts.AuctionHouseProgram), false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}
