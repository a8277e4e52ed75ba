package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var BuyListingInstructionDiscriminator = []byte{
	0x73, 0x95, 0x2a, 0x6c, 0x2c, 0x31, 0x8c, 0x99,
}

type BuyListingInstructionArgs struct {
	EscrowPaymentBump    uint8
	FreeTradeStateBump   uint8
	SellerTradeStateBump uint8
	ProgramAsSignerBump  uint8
	BuyerTradeStateBump  uint8
}

type BuyListingInstructionAccounts struct {
	Buyer                    ed25519.PublicKey
	PaymentAccount           ed25519.PublicKey
	TransferAuthority        ed25519.PublicKey
	BuyerRewardTokenAccount  ed25519.PublicKey
	Seller                   ed25519.PublicKey
	SellerRewardTokenAccount ed25519.PublicKey
	Listing                  ed25519.PublicKey
	SettlementAccounts
}

func NewBuyListingInstruction(
	accounts *BuyListingInstructionAccounts,
	args *BuyListingInstructionArgs,
) solana.Instruction {
	data := make([]byte,
		len(BuyListingInstructionDiscriminator)+
			SettlementInstructionArgsSize)

	putSettlementArgs(data, BuyListingInstructionDiscriminator, settlementBumps(*args))

	metas := []solana.AccountMeta{
		solana.NewAccountMeta(accounts.Buyer, true),
		solana.NewAccountMeta(accounts.PaymentAccount, false),
		solana.NewReadonlyAccountMeta(accounts.TransferAuthority, false),
		solana.NewAccountMeta(accounts.BuyerRewardTokenAccount, false),
		solana.NewAccountMeta(accounts.Seller, false),
		solana.NewAccountMeta(accounts.SellerRewardTokenAccount, false),
		solana.NewAccountMeta(accounts.Listing, false),
	}
	metas = append(metas, accounts.SettlementAccounts.metas()...)

	return solana.NewInstruction(PROGRAM_ID, data, metas...)
}
