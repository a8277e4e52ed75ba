package rewardcenter

import (
	"crypto/ed25519"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var (
	RewardCenterPrefix   = []byte("reward_center")
	ListingPrefix        = []byte("listing")
	OfferPrefix          = []byte("offer")
	PurchaseTicketPrefix = []byte("purchase_ticket")
)

func GetRewardCenterAddress(auctionHouse ed25519.PublicKey) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		RewardCenterPrefix,
		auctionHouse,
	)
}

type GetListingAddressArgs struct {
	Seller       ed25519.PublicKey
	Metadata     ed25519.PublicKey
	RewardCenter ed25519.PublicKey
}

func GetListingAddress(args *GetListingAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		ListingPrefix,
		args.Seller,
		args.Metadata,
		args.RewardCenter,
	)
}

type GetOfferAddressArgs struct {
	Buyer        ed25519.PublicKey
	Metadata     ed25519.PublicKey
	RewardCenter ed25519.PublicKey
}

func GetOfferAddress(args *GetOfferAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		OfferPrefix,
		args.Buyer,
		args.Metadata,
		args.RewardCenter,
	)
}

type GetPurchaseTicketAddressArgs struct {
	Listing ed25519.PublicKey
	Offer   ed25519.PublicKey
}

func GetPurchaseTicketAddress(args *GetPurchaseTicketAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		PROGRAM_ID,
		PurchaseTicketPrefix,
		args.Listing,
		args.Offer,
	)
}
