package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/system"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

var CreateOfferInstructionDiscriminator = []byte{
	0xed, 0xe9, 0xc0, 0xa8, 0xf8, 0x07, 0xf9, 0xf1,
}

const (
	CreateOfferInstructionArgsSize = (1 + // trade_state_bump
		1 + // escrow_payment_bump
		8 + // buyer_price
		8) // token_size
)

type CreateOfferInstructionArgs struct {
	TradeStateBump    uint8
	EscrowPaymentBump uint8
	BuyerPrice        uint64
	TokenSize         uint64
}

type CreateOfferInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	Offer                  ed25519.PublicKey
	PaymentAccount         ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
	RewardCenter           ed25519.PublicKey
	TreasuryMint           ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	Metadata               ed25519.PublicKey
	EscrowPaymentAccount   ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	BuyerTradeState        ed25519.PublicKey
	AhAuctioneerPda        ed25519.PublicKey
	AuctionHouseProgram    ed25519.PublicKey
}

func NewCreateOfferInstruction(
	accounts *CreateOfferInstructionAccounts,
	args *CreateOfferInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(CreateOfferInstructionDiscriminator)+
			CreateOfferInstructionArgsSize)

	binary.PutDiscriminator(data, CreateOfferInstructionDiscriminator, &offset)
	binary.PutUint8(data[offset:], args.TradeStateBump, &offset)
	binary.PutUint8(data[offset:], args.EscrowPaymentBump, &offset)
	binary.PutUint64(data[offset:], args.BuyerPrice, &offset)
	binary.PutUint64(data[offset:], args.TokenSize, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.Wallet, true),
		solana.NewAccountMeta(accounts.Offer, false),
		solana.NewAccountMeta(accounts.PaymentAccount, false),
		solana.NewReadonlyAccountMeta(accounts.TransferAuthority, false),
		solana.NewReadonlyAccountMeta(accounts.RewardCenter, false),
		solana.NewReadonlyAccountMeta(accounts.TreasuryMint, false),
		solana.NewReadonlyAccountMeta(accounts.TokenAccount, false),
		solana.NewReadonlyAccountMeta(accounts.Metadata, false),
		solana.NewAccountMeta(accounts.EscrowPaymentAccount, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, false),
		solana.NewReadonlyAccountMeta(accounts.AuctionHouse, false),
		solana.NewAccountMeta(accounts.AuctionHouseFeeAccount, false),
		solana.NewAccountMeta(accounts.BuyerTradeState, false),
		solana.NewReadonlyAccountMeta(accounts.AhAuctioneerPda, false),
		solana.NewReadonlyAccountMeta(auctionHouseProgram(accounts.AuctionHouseProgram), false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}
