package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/binary"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/system"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

var AcceptOfferInstructionDiscriminator = []byte{
	0xe3, 0x52, 0xea, 0x83, 0x01, 0x12, 0x30, 0x02,
}

// SettlementInstructionArgsSize is the argument size shared by accept_offer
// and buy_listing.
const (
	SettlementInstructionArgsSize = (1 + // escrow_payment_bump
		1 + // free_trade_state_bump
		1 + // seller_trade_state_bump
		1 + // program_as_signer_bump
		1) // buyer_trade_state_bump
)

type AcceptOfferInstructionArgs struct {
	EscrowPaymentBump    uint8
	FreeTradeStateBump   uint8
	SellerTradeStateBump uint8
	ProgramAsSignerBump  uint8
	BuyerTradeStateBump  uint8
}

// SettlementAccounts are the accounts shared by accept_offer and buy_listing,
// in instruction order, following the party specific accounts.
type SettlementAccounts struct {
	TokenAccount                   ed25519.PublicKey
	TokenMint                      ed25519.PublicKey
	Metadata                       ed25519.PublicKey
	TreasuryMint                   ed25519.PublicKey
	SellerPaymentReceiptAccount    ed25519.PublicKey
	BuyerReceiptTokenAccount       ed25519.PublicKey
	Authority                      ed25519.PublicKey
	EscrowPaymentAccount           ed25519.PublicKey
	AuctionHouse                   ed25519.PublicKey
	AuctionHouseFeeAccount         ed25519.PublicKey
	AuctionHouseTreasury           ed25519.PublicKey
	BuyerTradeState                ed25519.PublicKey
	SellerTradeState               ed25519.PublicKey
	FreeSellerTradeState           ed25519.PublicKey
	RewardCenter                   ed25519.PublicKey
	RewardCenterRewardTokenAccount ed25519.PublicKey
	AhAuctioneerPda                ed25519.PublicKey
	ProgramAsSigner                ed25519.PublicKey
	AuctionHouseProgram            ed25519.PublicKey
}

type AcceptOfferInstructionAccounts struct {
	Buyer                    ed25519.PublicKey
	BuyerRewardTokenAccount  ed25519.PublicKey
	Seller                   ed25519.PublicKey
	SellerRewardTokenAccount ed25519.PublicKey
	Offer                    ed25519.PublicKey
	SettlementAccounts
}

func NewAcceptOfferInstruction(
	accounts *AcceptOfferInstructionAccounts,
	args *AcceptOfferInstructionArgs,
) solana.Instruction {
	data := make([]byte,
		len(AcceptOfferInstructionDiscriminator)+
			SettlementInstructionArgsSize)

	putSettlementArgs(data, AcceptOfferInstructionDiscriminator, settlementBumps(*args))

	metas := []solana.AccountMeta{
		solana.NewAccountMeta(accounts.Buyer, false),
		solana.NewAccountMeta(accounts.BuyerRewardTokenAccount, false),
		solana.NewAccountMeta(accounts.Seller, true),
		solana.NewAccountMeta(accounts.SellerRewardTokenAccount, false),
		solana.NewAccountMeta(accounts.Offer, false),
	}
	metas = append(metas, accounts.SettlementAccounts.metas()...)

	return solana.NewInstruction(PROGRAM_ID, data, metas...)
}

type settlementBumps struct {
	EscrowPaymentBump    uint8
	FreeTradeStateBump   uint8
	SellerTradeStateBump uint8
	ProgramAsSignerBump  uint8
	BuyerTradeStateBump  uint8
}

func putSettlementArgs(data, discriminator []byte, bumps settlementBumps) {
	var offset int

	binary.PutDiscriminator(data, discriminator, &offset)
	binary.PutUint8(data[offset:], bumps.EscrowPaymentBump, &offset)
	binary.PutUint8(data[offset:], bumps.FreeTradeStateBump, &offset)
	binary.PutUint8(data[offset:], bumps.SellerTradeStateBump, &offset)
	binary.PutUint8(data[offset:], bumps.ProgramAsSignerBump, &offset)
	binary.PutUint8(data[offset:], bumps.BuyerTradeStateBump, &offset)
}

func (a *SettlementAccounts) metas() []solana.AccountMeta {
	return []solana.AccountMeta{
		solana.NewAccountMeta(a.TokenAccount, false),
		solana.NewReadonlyAccountMeta(a.TokenMint, false),
		solana.NewReadonlyAccountMeta(a.Metadata, false),
		solana.NewReadonlyAccountMeta(a.TreasuryMint, false),
		solana.NewAccountMeta(a.SellerPaymentReceiptAccount, false),
		solana.NewAccountMeta(a.BuyerReceiptTokenAccount, false),
		solana.NewReadonlyAccountMeta(a.Authority, false),
		solana.NewAccountMeta(a.EscrowPaymentAccount, false),
		solana.NewReadonlyAccountMeta(a.AuctionHouse, false),
		solana.NewAccountMeta(a.AuctionHouseFeeAccount, false),
		solana.NewAccountMeta(a.AuctionHouseTreasury, false),
		solana.NewAccountMeta(a.BuyerTradeState, false),
		solana.NewAccountMeta(a.SellerTradeState, false),
		solana.NewAccountMeta(a.FreeSellerTradeState, false),
		solana.NewReadonlyAccountMeta(a.RewardCenter, false),
		solana.NewAccountMeta(a.RewardCenterRewardTokenAccount, false),
		solana.NewReadonlyAccountMeta(a.AhAuctioneerPda, false),
		solana.NewReadonlyAccountMeta(a.ProgramAsSigner, false),
		solana.NewReadonlyAccountMeta(auctionHouseProgram(a.AuctionHouseProgram), false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.AssociatedTokenAccountProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	}
}
