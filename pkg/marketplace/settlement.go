package marketplace

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	compute_budget "github.com/motleylabs/mtly-nightmarket-go/pkg/solana/computebudget"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/rewardcenter"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
)

// settlement is everything accept_offer and buy_listing have in common.
type settlement struct {
	derivation *derivation
	listing    *listingDerivation
	offer      *offerDerivation
	asset      *Asset
	accounts   rewardcenter.SettlementAccounts
	bumps      rewardcenter.AcceptOfferInstructionArgs

	buyerRewardTokenAccount  ed25519.PublicKey
	sellerRewardTokenAccount ed25519.PublicKey
	createBuyerRewardAta     solana.Instruction
	createSellerRewardAta    solana.Instruction
}

func (b *Builder) prepareSettlement(ctx context.Context, args *OfferArgs) (*settlement, error) {
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

	asset, err := b.resolveAsset(ctx, d)
	if err != nil {
		return nil, err
	}

	l, err := b.deriveListing(d, args.Seller)
	if err != nil {
		return nil, err
	}

	o, err := b.deriveOffer(d, args.Buyer, price)
	if err != nil {
		return nil, err
	}

	buyerReceiptTokenAccount, err := token.GetAssociatedAccount(args.Buyer, args.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive buyer token account")
	}

	rewardCenterRewardTokenAccount, err := token.GetAssociatedAccount(d.rewardCenter, rc.TokenMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive reward center token account")
	}

	createBuyerAta, buyerAta, err := createRewardTokenAccount(rc, args.Buyer)
	if err != nil {
		return nil, err
	}

	createSellerAta, sellerAta, err := createRewardTokenAccount(rc, args.Seller)
	if err != nil {
		return nil, err
	}

	ah := b.auctionHouse
	return &settlement{
		derivation: d,
		listing:    l,
		offer:      o,
		asset:      asset,
		accounts: rewardcenter.SettlementAccounts{
			TokenAccount:                   l.tokenAccount,
			TokenMint:                      args.Mint,
			Metadata:                       d.metadata,
			TreasuryMint:                   ah.TreasuryMint,
			SellerPaymentReceiptAccount:    args.Seller,
			BuyerReceiptTokenAccount:       buyerReceiptTokenAccount,
			Authority:                      ah.Authority,
			EscrowPaymentAccount:           o.escrow.PublicKey,
			AuctionHouse:                   ah.Address,
			AuctionHouseFeeAccount:         ah.FeeAccount,
			AuctionHouseTreasury:           ah.TreasuryAccount,
			BuyerTradeState:                o.tradeState.PublicKey,
			SellerTradeState:               l.tradeState.PublicKey,
			FreeSellerTradeState:           l.freeTradeState.PublicKey,
			RewardCenter:                   d.rewardCenter,
			RewardCenterRewardTokenAccount: rewardCenterRewardTokenAccount,
			AhAuctioneerPda:                d.auctioneer,
			ProgramAsSigner:                d.programAsSigner.PublicKey,
			AuctionHouseProgram:            ah.Program,
		},
		bumps: rewardcenter.AcceptOfferInstructionArgs{
			EscrowPaymentBump:    o.escrow.Bump,
			FreeTradeStateBump:   l.freeTradeState.Bump,
			SellerTradeStateBump: l.tradeState.Bump,
			ProgramAsSignerBump:  d.programAsSigner.Bump,
			BuyerTradeStateBump:  o.tradeState.Bump,
		},
		buyerRewardTokenAccount:  buyerAta,
		sellerRewardTokenAccount: sellerAta,
		createBuyerRewardAta:     createBuyerAta,
		createSellerRewardAta:    createSellerAta,
	}, nil
}

// remainingAccounts are the creators followed, for programmable assets, by
// the transfer bundle of the buyer receiving from the seller.
func (s *settlement) remainingAccounts(args *OfferArgs) ([]solana.AccountMeta, *ProgrammableAssetAccounts, error) {
	metas := s.asset.creatorAccounts()
	if !s.asset.IsProgrammable() {
		return metas, nil, nil
	}

	pnft, err := NewProgrammableAssetAccounts(s.asset, args.Buyer, s.derivation.programAsSigner.PublicKey, args.Seller)
	if err != nil {
		return nil, nil, err
	}
	return append(metas, pnft.TransferAccounts()...), pnft, nil
}

// AcceptOffer sells the mint to the buyer at the offered price. When the
// seller still has a listing for the mint, it is closed in the same
// transaction, ahead of the sale.
func (b *Builder) AcceptOffer(ctx context.Context, args *OfferArgs, opts ...BuildOption) ([]solana.Instruction, error) {
	options := applyBuildOptions(opts)

	s, err := b.prepareSettlement(ctx, args)
	if err != nil {
		return nil, err
	}

	remaining, pnft, err := s.remainingAccounts(args)
	if err != nil {
		return nil, err
	}
	if pnft != nil {
		remaining = append(remaining, pnft.RevokeAccounts()...)
	}

	acceptOffer := rewardcenter.NewAcceptOfferInstruction(
		&rewardcenter.AcceptOfferInstructionAccounts{
			Buyer:                    args.Buyer,
			BuyerRewardTokenAccount:  s.buyerRewardTokenAccount,
			Seller:                   args.Seller,
			SellerRewardTokenAccount: s.sellerRewardTokenAccount,
			Offer:                    s.offer.offer,
			SettlementAccounts:       s.accounts,
		},
		&s.bumps,
	)
	acceptOffer.MarkWritable(s.derivation.metadata)
	acceptOffer.AppendAccounts(remaining...)

	var instructions []solana.Instruction
	if options.computeBudget {
		instructions = append(instructions, compute_budget.SetComputeUnitLimit(settlementComputeUnitLimit))
	}

	listed, err := chain.AccountExists(ctx, b.provider, s.listing.listing)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check for an existing listing")
	}
	if listed {
		closeListing, err := b.closeListingInstruction(s.derivation, s.listing, args.Seller, s.asset)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, closeListing)
	}

	return append(instructions, s.createSellerRewardAta, acceptOffer), nil
}

// BuyListing buys the seller's listed mint at the listed price.
func (b *Builder) BuyListing(ctx context.Context, args *OfferArgs, opts ...BuildOption) ([]solana.Instruction, error) {
	options := applyBuildOptions(opts)

	s, err := b.prepareSettlement(ctx, args)
	if err != nil {
		return nil, err
	}

	remaining, _, err := s.remainingAccounts(args)
	if err != nil {
		return nil, err
	}

	buyListing := rewardcenter.NewBuyListingInstruction(
		&rewardcenter.BuyListingInstructionAccounts{
			Buyer:                    args.Buyer,
			PaymentAccount:           args.Buyer,
			TransferAuthority:        args.Buyer,
			BuyerRewardTokenAccount:  s.buyerRewardTokenAccount,
			Seller:                   args.Seller,
			SellerRewardTokenAccount: s.sellerRewardTokenAccount,
			Listing:                  s.listing.listing,
			SettlementAccounts:       s.accounts,
		},
		&rewardcenter.BuyListingInstructionArgs{
			EscrowPaymentBump:    s.bumps.EscrowPaymentBump,
			FreeTradeStateBump:   s.bumps.FreeTradeStateBump,
			SellerTradeStateBump: s.bumps.SellerTradeStateBump,
			ProgramAsSignerBump:  s.bumps.ProgramAsSignerBump,
			BuyerTradeStateBump:  s.bumps.BuyerTradeStateBump,
		},
	)
	buyListing.MarkWritable(s.derivation.metadata)
	buyListing.AppendAccounts(remaining...)

	var instructions []solana.Instruction
	if options.computeBudget {
		instructions = append(instructions, compute_budget.SetComputeUnitLimit(settlementComputeUnitLimit))
	}
	return append(instructions, s.createBuyerRewardAta, buyListing), nil
}
