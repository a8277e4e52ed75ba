package marketplace

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/sol"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/auctionhouse"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/rewardcenter"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/tokenmetadata"
)

const (
	// Every trade moves exactly one token.
	tokenSize uint64 = 1

	listingComputeUnitLimit    uint32 = 600_000
	settlementComputeUnitLimit uint32 = 1_000_000
)

// BuildOption configures a single builder call.
type BuildOption func(*buildOptions)

type buildOptions struct {
	computeBudget bool
}

// WithoutComputeBudget omits the compute budget instructions, for callers
// that set their own.
func WithoutComputeBudget() BuildOption {
	return func(o *buildOptions) {
		o.computeBudget = false
	}
}

func applyBuildOptions(opts []BuildOption) buildOptions {
	o := buildOptions{computeBudget: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Builder assembles the instructions of every marketplace action for one
// auction house. The only network reads go through its chain.Provider.
type Builder struct {
	auctionHouse     *AuctionHouse
	provider         chain.Provider
	computeUnitPrice uint64
}

// NewBuilder returns a builder for the auction house, whose Program must be
// set (see AuctionHouseConfig.Bind). computeUnitPrice is in micro-lamports;
// zero omits the price instruction.
func NewBuilder(auctionHouse *AuctionHouse, provider chain.Provider, computeUnitPrice uint64) *Builder {
	return &Builder{
		auctionHouse:     auctionHouse,
		provider:         provider,
		computeUnitPrice: computeUnitPrice,
	}
}

// Asset is a mint with its resolved token metadata.
type Asset struct {
	Mint     ed25519.PublicKey
	Address  ed25519.PublicKey
	Metadata *tokenmetadata.Metadata
}

// IsProgrammable reports whether transfers of the asset need the
// programmable NFT accounts.
func (a *Asset) IsProgrammable() bool {
	return a.Metadata.IsProgrammable()
}

// creatorAccounts returns one writable entry per royalty recipient.
func (a *Asset) creatorAccounts() []solana.AccountMeta {
	metas := make([]solana.AccountMeta, 0, len(a.Metadata.Creators))
	for _, creator := range a.Metadata.Creators {
		metas = append(metas, solana.NewAccountMeta(creator.Address, false))
	}
	return metas
}

func (b *Builder) rewardCenter() (*RewardCenter, error) {
	if b.auctionHouse == nil || b.auctionHouse.RewardCenter == nil {
		return nil, ErrRewardCenterNotFound
	}
	return b.auctionHouse.RewardCenter, nil
}

// resolveAsset performs the single metadata read of an action.
func (b *Builder) resolveAsset(ctx context.Context, d *derivation) (*Asset, error) {
	metadata, err := chain.GetMetadata(ctx, b.provider, d.metadata)
	if err == chain.ErrAccountNotFound {
		return nil, ErrMetadataNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to resolve metadata")
	}

	return &Asset{
		Mint:     d.mint,
		Address:  d.metadata,
		Metadata: metadata,
	}, nil
}

func toLamports(price float64) (uint64, error) {
	lamports, err := sol.ToLamports(price)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPrice, "%v: %s", price, err.Error())
	}
	return lamports, nil
}

// derivation holds the addresses shared by every action on a mint.
type derivation struct {
	mint            ed25519.PublicKey
	metadata        ed25519.PublicKey
	rewardCenter    ed25519.PublicKey
	auctioneer      ed25519.PublicKey
	programAsSigner solana.DerivedAddress
}

func (b *Builder) derive(mint ed25519.PublicKey) (*derivation, error) {
	ah := b.auctionHouse
	if len(ah.Program) == 0 {
		return nil, ErrProgramNotResolved
	}

	metadata, err := tokenmetadata.GetMetadataAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive metadata address")
	}

	rewardCenter, err := rewardcenter.GetRewardCenterAddress(ah.Address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive reward center address")
	}

	auctioneer, err := auctionhouse.GetAuctioneerAddress(&auctionhouse.GetAuctioneerAddressArgs{
		Program:      ah.Program,
		AuctionHouse: ah.Address,
		Auctioneer:   rewardCenter.PublicKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive auctioneer address")
	}

	programAsSigner, err := auctionhouse.GetProgramAsSignerAddress(ah.Program)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive program as signer address")
	}

	return &derivation{
		mint:            mint,
		metadata:        metadata.PublicKey,
		rewardCenter:    rewardCenter.PublicKey,
		auctioneer:      auctioneer.PublicKey,
		programAsSigner: programAsSigner,
	}, nil
}

// listingDerivation holds the seller side addresses.
type listingDerivation struct {
	tokenAccount   ed25519.PublicKey
	tradeState     solana.DerivedAddress
	freeTradeState solana.DerivedAddress
	listing        ed25519.PublicKey
}

func (b *Builder) deriveListing(d *derivation, seller ed25519.PublicKey) (*listingDerivation, error) {
	ah := b.auctionHouse

	tokenAccount, err := token.GetAssociatedAccount(seller, d.mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive seller token account")
	}

	tradeState, err := auctionhouse.GetAuctioneerTradeStateAddress(&auctionhouse.GetAuctioneerTradeStateAddressArgs{
		Program:      ah.Program,
		Wallet:       seller,
		AuctionHouse: ah.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    d.mint,
		TokenSize:    tokenSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive seller trade state")
	}

	freeTradeState, err := auctionhouse.GetTradeStateAddress(&auctionhouse.GetTradeStateAddressArgs{
		Program:      ah.Program,
		Wallet:       seller,
		AuctionHouse: ah.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    d.mint,
		Price:        0,
		TokenSize:    tokenSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive free seller trade state")
	}

	listing, err := rewardcenter.GetListingAddress(&rewardcenter.GetListingAddressArgs{
		Seller:       seller,
		Metadata:     d.metadata,
		RewardCenter: d.rewardCenter,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive listing address")
	}

	return &listingDerivation{
		tokenAccount:   tokenAccount,
		tradeState:     tradeState,
		freeTradeState: freeTradeState,
		listing:        listing.PublicKey,
	}, nil
}

// offerDerivation holds the buyer side addresses.
type offerDerivation struct {
	tradeState solana.DerivedAddress
	escrow     solana.DerivedAddress
	offer      ed25519.PublicKey
}

func (b *Builder) deriveOffer(d *derivation, buyer ed25519.PublicKey, lamports uint64) (*offerDerivation, error) {
	ah := b.auctionHouse

	tradeState, err := auctionhouse.GetPublicBidTradeStateAddress(&auctionhouse.GetPublicBidTradeStateAddressArgs{
		Program:      ah.Program,
		Wallet:       buyer,
		AuctionHouse: ah.Address,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    d.mint,
		Price:        lamports,
		TokenSize:    tokenSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive buyer trade state")
	}

	escrow, err := auctionhouse.GetEscrowPaymentAddress(&auctionhouse.GetEscrowPaymentAddressArgs{
		Program:      ah.Program,
		AuctionHouse: ah.Address,
		Wallet:       buyer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive escrow payment address")
	}

	offer, err := rewardcenter.GetOfferAddress(&rewardcenter.GetOfferAddressArgs{
		Buyer:        buyer,
		Metadata:     d.metadata,
		RewardCenter: d.rewardCenter,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive offer address")
	}

	return &offerDerivation{
		tradeState: tradeState,
		escrow:     escrow,
		offer:      offer.PublicKey,
	}, nil
}

// createRewardTokenAccount returns the idempotent creation of owner's reward
// token account, paid by owner.
func createRewardTokenAccount(rc *RewardCenter, owner ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	ixn, ata, err := token.CreateAssociatedTokenAccountIdempotent(owner, owner, rc.TokenMint)
	if err != nil {
		return solana.Instruction{}, nil, errors.Wrap(err, "failed to derive reward token account")
	}
	return ixn, ata, nil
}

func (b *Builder) closeListingInstruction(
	d *derivation,
	l *listingDerivation,
	seller ed25519.PublicKey,
	asset *Asset,
) (solana.Instruction, error) {
	ah := b.auctionHouse

	ixn := rewardcenter.NewCloseListingInstruction(&rewardcenter.CloseListingInstructionAccounts{
		Wallet:                 seller,
		Listing:                l.listing,
		RewardCenter:           d.rewardCenter,
		Metadata:               d.metadata,
		TokenAccount:           l.tokenAccount,
		TokenMint:              d.mint,
		Authority:              ah.Authority,
		AuctionHouse:           ah.Address,
		AuctionHouseFeeAccount: ah.FeeAccount,
		TradeState:             l.tradeState.PublicKey,
		AhAuctioneerPda:        d.auctioneer,
		AuctionHouseProgram:    ah.Program,
	})

	if asset.IsProgrammable() {
		pnft, err := NewProgrammableAssetAccounts(asset, seller, d.programAsSigner.PublicKey, nil)
		if err != nil {
			return solana.Instruction{}, err
		}
		ixn.AppendAccounts(pnft.CloseListingAccounts()...)
	}

	return ixn, nil
}
