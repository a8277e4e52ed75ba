package marketplace

import (
	"context"
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	compute_budget "github.com/motleylabs/mtly-nightmarket-go/pkg/solana/computebudget"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/rewardcenter"
)

// ListingArgs identify a seller's listing of a mint. Price is in SOL and is
// ignored when closing.
type ListingArgs struct {
	Mint   ed25519.PublicKey
	Seller ed25519.PublicKey
	Price  float64
}

// CreateListing lists the mint at the given price. The instructions are the
// seller's reward token account creation, the listing creation and the
// compute budget.
func (b *Builder) CreateListing(ctx context.Context, args *ListingArgs, opts ...BuildOption) ([]solana.Instruction, error) {
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

	asset, err := b.resolveAsset(ctx, d)
	if err != nil {
		return nil, err
	}

	l, err := b.deriveListing(d, args.Seller)
	if err != nil {
		return nil, err
	}

	createAta, _, err := createRewardTokenAccount(rc, args.Seller)
	if err != nil {
		return nil, err
	}

	ah := b.auctionHouse
	createListing := rewardcenter.NewCreateListingInstruction(
		&rewardcenter.CreateListingInstructionAccounts{
			Wallet:                 args.Seller,
			Listing:                l.listing,
			RewardCenter:           d.rewardCenter,
			TokenAccount:           l.tokenAccount,
			Metadata:               d.metadata,
			Authority:              ah.Authority,
			AuctionHouse:           ah.Address,
			AuctionHouseFeeAccount: ah.FeeAccount,
			SellerTradeState:       l.tradeState.PublicKey,
			FreeSellerTradeState:   l.freeTradeState.PublicKey,
			AhAuctioneerPda:        d.auctioneer,
			ProgramAsSigner:        d.programAsSigner.PublicKey,
			AuctionHouseProgram:    ah.Program,
		},
		&rewardcenter.CreateListingInstructionArgs{
			Price:               price,
			TokenSize:           tokenSize,
			TradeStateBump:      l.tradeState.Bump,
			FreeTradeStateBump:  l.freeTradeState.Bump,
			ProgramAsSignerBump: d.programAsSigner.Bump,
		},
	)

	if asset.IsProgrammable() {
		pnft, err := NewProgrammableAssetAccounts(asset, args.Seller, d.programAsSigner.PublicKey, nil)
		if err != nil {
			return nil, err
		}
		createListing.AppendAccounts(pnft.ListingAccounts()...)
	}
	createListing.MarkWritable(d.metadata)

	instructions := []solana.Instruction{createAta, createListing}
	if options.computeBudget {
		instructions = append(instructions, compute_budget.SetComputeUnitLimit(listingComputeUnitLimit))
		if b.computeUnitPrice > 0 {
			instructions = append(instructions, compute_budget.SetComputeUnitPrice(b.computeUnitPrice))
		}
	}
	return instructions, nil
}

// UpdateListing changes the price of an existing listing. It makes no
// network calls.
func (b *Builder) UpdateListing(_ context.Context, args *ListingArgs, _ ...BuildOption) ([]solana.Instruction, error) {
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

	l, err := b.deriveListing(d, args.Seller)
	if err != nil {
		return nil, err
	}

	ah := b.auctionHouse
	return []solana.Instruction{
		rewardcenter.NewUpdateListingInstruction(
			&rewardcenter.UpdateListingInstructionAccounts{
				Wallet:              args.Seller,
				Listing:             l.listing,
				RewardCenter:        d.rewardCenter,
				AuctionHouse:        ah.Address,
				Metadata:            d.metadata,
				TokenAccount:        l.tokenAccount,
				AuctionHouseProgram: ah.Program,
			},
			&rewardcenter.UpdateListingInstructionArgs{
				NewPrice: price,
			},
		),
	}, nil
}

// CloseListing cancels the seller's listing of the mint.
func (b *Builder) CloseListing(ctx context.Context, args *ListingArgs, opts ...BuildOption) ([]solana.Instruction, error) {
	options := applyBuildOptions(opts)

	if _, err := b.rewardCenter(); err != nil {
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

	closeListing, err := b.closeListingInstruction(d, l, args.Seller, asset)
	if err != nil {
		return nil, err
	}

	instructions := []solana.Instruction{closeListing}
	if options.computeBudget {
		instructions = append(instructions, compute_budget.SetComputeUnitLimit(listingComputeUnitLimit))
		if b.computeUnitPrice > 0 {
			instructions = append(instructions, compute_budget.SetComputeUnitPrice(b.computeUnitPrice))
		}
	}
	return instructions, nil
}
