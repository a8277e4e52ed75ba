package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/system"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

var CloseOfferInstructionDiscriminator = []byte{
	0xbf, 0x48, 0x43, 0x23, 0xef, 0xd1, 0x61, 0x84,
}

const (
	CloseOfferInstructionArgsSize = 1 // escrow_payment_bump
)

type CloseOfferInstructionArgs struct {
	EscrowPaymentBump uint8
}

type CloseOfferInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	Offer                  ed25519.PublicKey
	TreasuryMint           ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	ReceiptAccount         ed25519.PublicKey
	EscrowPaymentAccount   ed25519.PublicKey
	Metadata               ed25519.PublicKey
	TokenMint              ed25519.PublicKey
	Authority              ed25519.PublicKey
	RewardCenter           ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	TradeState             ed25519.PublicKey
	AhAuctioneerPda        ed25519.PublicKey
	AuctionHouseProgram    ed25519.PublicKey
}

func NewCloseOfferInstruction(
	accounts *CloseOfferInstructionAccounts,
	args *CloseOfferInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(CloseOfferInstructionDiscriminator)+
			CloseOfferInstructionArgsSize)

	binary.PutDiscriminator(data, CloseOfferInstructionDiscriminator, &offset)
	binary.PutUint8(data[offset:], args.EscrowPaymentBump, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.Wallet, true),
		solana.NewAccountMeta(accounts.Offer, false),
		solana.NewReadonlyAccountMeta(accounts.TreasuryMint, false),
		solana.NewReadonlyAccountMeta(accounts.TokenAccount, false),
		solana.NewAccountMeta(accounts.ReceiptAccount, false),
		solana.NewAccountMeta(accounts.EscrowPaymentAccount, false),
		solana.NewReadonlyAccountMeta(accounts.Metadata, false),
		solana.NewReadonlyAccountMeta(accounts.TokenMint, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, false),
		solana.NewReadonlyAccountMeta(accounts.RewardCenter, false),
		solana.NewReadonlyAccountMeta(accounts.AuctionHouse, false),
		solana.NewAccountMeta(accounts.AuctionHouseFeeAccount, false),
		solana.NewAccountMeta(accounts.TradeState, false),
		solana.NewReadonlyAccountMeta(accounts.AhAuctioneerPda, false),
		solana.NewReadonlyAccountMeta(auctionHouseProgram(accounts.AuctionHouseProgram), false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.AssociatedTokenAccountProgramKey, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}
