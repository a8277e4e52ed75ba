package auctionhouse

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var (
	AuctionHousePrefix    = []byte("auction_house")
	AuctioneerPrefix      = []byte("auctioneer")
	SignerPrefix          = []byte("signer")
	FeePayerPrefix        = []byte("fee_payer")
	TreasuryPrefix        = []byte("treasury")
	ListingReceiptPrefix  = []byte("listing_receipt")
	BidReceiptPrefix      = []byte("bid_receipt")
	PurchaseReceiptPrefix = []byte("purchase_receipt")
)

// Every Args struct takes an optional Program. When unset, PROGRAM_ID is used.

type GetAuctionHouseAddressArgs struct {
	Program      ed25519.PublicKey
	Creator      ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
}

func GetAuctionHouseAddress(args *GetAuctionHouseAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctionHousePrefix,
		args.Creator,
		args.TreasuryMint,
	)
}

type GetAuctionHouseFeeAddressArgs struct {
	Program      ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
}

func GetAuctionHouseFeeAddress(args *GetAuctionHouseFeeAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctionHousePrefix,
		args.AuctionHouse,
		FeePayerPrefix,
	)
}

type GetAuctionHouseTreasuryAddressArgs struct {
	Program      ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
}

func GetAuctionHouseTreasuryAddress(args *GetAuctionHouseTreasuryAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctionHousePrefix,
		args.AuctionHouse,
		TreasuryPrefix,
	)
}

type GetTradeStateAddressArgs struct {
	Program      ed25519.PublicKey
	Wallet       ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
	TokenMint    ed25519.PublicKey
	Price        uint64
	TokenSize    uint64
}

// GetTradeStateAddress derives the trade state of a sell order or private
// bid. A zero price yields the "free" trade state.
func GetTradeStateAddress(args *GetTradeStateAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctionHousePrefix,
		args.Wallet,
		args.AuctionHouse,
		args.TokenAccount,
		args.TreasuryMint,
		args.TokenMint,
		encodeUint64(args.Price),
		encodeUint64(args.TokenSize),
	)
}

type GetAuctioneerTradeStateAddressArgs struct {
	Program      ed25519.PublicKey
	Wallet       ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
	TokenMint    ed25519.PublicKey
	TokenSize    uint64
}

// GetAuctioneerTradeStateAddress derives the trade state of an order
// delegated to an auctioneer, whose price seed is always AuctioneerPrice.
func GetAuctioneerTradeStateAddress(args *GetAuctioneerTradeStateAddressArgs) (solana.DerivedAddress, error) {
	return GetTradeStateAddress(&GetTradeStateAddressArgs{
		Program:      args.Program,
		Wallet:       args.Wallet,
		AuctionHouse: args.AuctionHouse,
		TokenAccount: args.TokenAccount,
		TreasuryMint: args.TreasuryMint,
		TokenMint:    args.TokenMint,
		Price:        AuctioneerPrice,
		TokenSize:    args.TokenSize,
	})
}

type GetPublicBidTradeStateAddressArgs struct {
	Program      ed25519.PublicKey
	Wallet       ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
	TokenMint    ed25519.PublicKey
	Price        uint64
	TokenSize    uint64
}

// GetPublicBidTradeStateAddress derives the trade state of a bid that is not
// bound to a specific token account.
func GetPublicBidTradeStateAddress(args *GetPublicBidTradeStateAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctionHousePrefix,
		args.Wallet,
		args.AuctionHouse,
		args.TreasuryMint,
		args.TokenMint,
		encodeUint64(args.Price),
		encodeUint64(args.TokenSize),
	)
}

type GetEscrowPaymentAddressArgs struct {
	Program      ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	Wallet       ed25519.PublicKey
}

func GetEscrowPaymentAddress(args *GetEscrowPaymentAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctionHousePrefix,
		args.AuctionHouse,
		args.Wallet,
	)
}

// GetProgramAsSignerAddress derives the authority that holds delegated
// tokens for every auction house of the program.
func GetProgramAsSignerAddress(program ed25519.PublicKey) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(program),
		AuctionHousePrefix,
		SignerPrefix,
	)
}

type GetAuctioneerAddressArgs struct {
	Program      ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	Auctioneer   ed25519.PublicKey
}

// GetAuctioneerAddress derives the delegation record that lets an auctioneer
// authority act on the auction house.
func GetAuctioneerAddress(args *GetAuctioneerAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		AuctioneerPrefix,
		args.AuctionHouse,
		args.Auctioneer,
	)
}

type GetListingReceiptAddressArgs struct {
	Program    ed25519.PublicKey
	TradeState ed25519.PublicKey
}

func GetListingReceiptAddress(args *GetListingReceiptAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		ListingReceiptPrefix,
		args.TradeState,
	)
}

type GetBidReceiptAddressArgs struct {
	Program    ed25519.PublicKey
	TradeState ed25519.PublicKey
}

func GetBidReceiptAddress(args *GetBidReceiptAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		BidReceiptPrefix,
		args.TradeState,
	)
}

type GetPurchaseReceiptAddressArgs struct {
	Program          ed25519.PublicKey
	SellerTradeState ed25519.PublicKey
	BuyerTradeState  ed25519.PublicKey
}

func GetPurchaseReceiptAddress(args *GetPurchaseReceiptAddressArgs) (solana.DerivedAddress, error) {
	return solana.DeriveAddress(
		programOrDefault(args.Program),
		PurchaseReceiptPrefix,
		args.SellerTradeState,
		args.BuyerTradeState,
	)
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
