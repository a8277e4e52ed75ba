package marketplace

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	compute_budget "github.com/motleylabs/mtly-nightmarket-go/pkg/solana/computebudget"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/rewardcenter"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

const offerComputeUnitLimit uint32 = 600_000

// OfferArgs identify a trade between a buyer and the current holder of the
// mint. Price is in SOL.
type OfferArgs struct {
	Mint   ed25519.PublicKey
	Seller ed25519.PublicKey
	Buyer  ed25519.PublicKey
	Price  float64
}

// CreateOffer escrows the price from the buyer as an offer on the mint. It
// makes no network calls.
func (b *Builder) CreateOffer(_ context.Context, args *OfferArgs, opts ...BuildOption) ([]solana.Instruction, error) {
	options := applyBuildOptions(opts)

	rc, err := b.rewardCenter()
	if err != nil {
		return nil, err
	}

	price, err := toLamports(args.Price)
	if err != nil {
		return nil, err
	}

	d, err := b.derive(args.Mint)
	if err != nil {
		return nil, err
	}

	o, err := b.deriveOffer(d, args.Buyer, price)
	if err != nil {
		return nil, err
	}

	tokenAccount, err := token.GetAssociatedAccount(args.Seller, args.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive seller token account")
	}

	createAta, _, err := createRewardTokenAccount(rc, args.Buyer)
	if err != nil {
		return nil, err
	}

	ah := b.auctionHouse
	createOffer := rewardcenter.NewCreateOfferInstruction(
		&rewardcenter.CreateOfferInstructionAccounts{
			Wallet:                 args.Buyer,
			Offer:                  o.offer,
			PaymentAccount:         args.Buyer,
			TransferAuthority:      args.Buyer,
			RewardCenter:           d.rewardCenter,
			TreasuryMint:           ah.TreasuryMint,
			TokenAccount:           tokenAccount,
			Metadata:               d.metadata,
			EscrowPaymentAccount:   o.escrow.PublicKey,
			Authority:              ah.Authority,
			AuctionHouse:           ah.Address,
			AuctionHouseFeeAccount: ah.FeeAccount,
			BuyerTradeState:        o.tradeState.PublicKey,
			AhAuctioneerPda:        d.auctioneer,
			AuctionHouseProgram:    ah.Program,
		},
		&rewardcenter.CreateOfferInstructionArgs{
			TradeStateBump:    o.tradeState.Bump,
			EscrowPaymentBump: o.escrow.Bump,
			BuyerPrice:        price,
			TokenSize:         tokenSize,
		},
	)
	createOffer.MarkWritable(d.metadata)

	instructions := []solana.Instruction{createAta, createOffer}
	if options.computeBudget {
		instructions = append(instructions, compute_budget.SetComputeUnitLimit(offerComputeUnitLimit))
	}
	return instructions, nil
}

// CloseOffer cancels the buyer's offer and releases the escrowed payment.
// Price must match the offer being closed. It makes no network calls.
func (b *Builder) CloseOffer(_ context.Context, args *OfferArgs, _ ...BuildOption) ([]solana.Instruction, error) {
	if _, err := b.rewardCenter(); err != nil {
		return nil, err
	}

	price, err := toLamports(args.Price)
	if err != nil {
		return nil, err
	}

	d, err := b.derive(args.Mint)
	if err != nil {
		return nil, err
	}

	o, err := b.deriveOffer(d, args.Buyer, price)
	if err != nil {
		return nil, err
	}

	tokenAccount, err := token.GetAssociatedAccount(args.Seller, args.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive seller token account")
	}

	ah := b.auctionHouse
	return []solana.Instruction{
		rewardcenter.NewCloseOfferInstruction(
			&rewardcenter.CloseOfferInstructionAccounts{
				Wallet:                 args.Buyer,
				Offer:                  o.offer,
				TreasuryMint:           ah.TreasuryMint,
				TokenAccount:           tokenAccount,
				ReceiptAccount:         args.Buyer,
				EscrowPaymentAccount:   o.escrow.PublicKey,
				Metadata:               d.metadata,
				TokenMint:              args.Mint,
				Authority:              ah.Authority,
				RewardCenter:           d.rewardCenter,
				AuctionHouse:           ah.Address,
				AuctionHouseFeeAccount: ah.FeeAccount,
				TradeState:             o.tradeState.PublicKey,
				AhAuctioneerPda:        d.auctioneer,
				AuctionHouseProgram:    ah.Program,
			},
			&rewardcenter.CloseOfferInstructionArgs{
				EscrowPaymentBump: o.escrow.Bump,
			},
		),
	}, nil
}
