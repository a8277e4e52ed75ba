package auctionhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

var (
	testAuctionHouse = solana.MustPublicKeyFromString("FVmjRUm2ssXi5vZUhwzB2HfXzTVzvE73x3f5NmTtZ7C8")
	testRewardCenter = solana.MustPublicKeyFromString("DzDX1vvRamMeAdcKCdsekcqeqLgRosF7NEZcDwWFWLRk")
	testAuthority    = solana.MustPublicKeyFromString("MtLyd5Jf2V3YbkUyRPR4VSUaa1MYw38c2U6dCwg4WUv")
	testTreasuryMint = solana.MustPublicKeyFromString("So11111111111111111111111111111111111111112")
	testMint         = solana.MustPublicKeyFromString("SAUCEvCGBkPPDPsiSWG5heGNMw68mc6EMuyGYwAfgaD")
	testWallet       = solana.MustPublicKeyFromString("H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ")
	testTokenAccount = solana.MustPublicKeyFromString("GoZ1zmS1zqLXMZ1zSPCmzHBUy4dzrXqN9mmTL6sip4JK")

	testForkProgram = solana.MustPublicKeyFromString("4ijDShFp2cRKsYi57iyokEMm9o98FJS5UEhhHTCoJ248")
	testForkHouse   = solana.MustPublicKeyFromString("6MHVnCeazUS1ZAfZAGQzkyTP5UHuvRtdWfZRMZr5ANGy")

	nightMarketFeeAccount      = solana.MustPublicKeyFromString("9AhUsSTdzZzi6MJcFGQkZam4zYQSNT1Lqz83P3viyqJk")
	nightMarketTreasuryAccount = solana.MustPublicKeyFromString("Ad7toYmfWGMYeB3gsDXTPFRgUhkNwvimZxC69nzkqJK7")
)

func TestGetAuctionHouseAddresses_ExplicitProgram(t *testing.T) {
	house, err := GetAuctionHouseAddress(&GetAuctionHouseAddressArgs{
		Program:      testForkProgram,
		Creator:      testAuthority,
		TreasuryMint: testTreasuryMint,
	})
	require.NoError(t, err)
	assert.EqualValues(t, testForkHouse, house.PublicKey)
	assert.EqualValues(t, 255, house.Bump)

	fee, err := GetAuctionHouseFeeAddress(&GetAuctionHouseFeeAddressArgs{Program: testForkProgram, AuctionHouse: testForkHouse})
	require.NoError(t, err)
	assert.Equal(t, "J4iEWtQiuJFwPS7nFXxpvkrLQcPpQSBqai7YQqhBGx5z", fee.String())

	treasury, err := GetAuctionHouseTreasuryAddress(&GetAuctionHouseTreasuryAddressArgs{Program: testForkProgram, AuctionHouse: testForkHouse})
	require.NoError(t, err)
	assert.Equal(t, "GEjwMUH8VCTTERZMaMQ5bisJm2nYRb2rbNw2Tpi4mSTz", treasury.String())
}

// The Night Market house is not a Metaplex house: its fee and treasury
// accounts are derived by a different program.
func TestGetAuctionHouseAddresses_NightMarketIsNotMetaplex(t *testing.T) {
	house, err := GetAuctionHouseAddress(&GetAuctionHouseAddressArgs{Creator: testAuthority, TreasuryMint: testTreasuryMint})
	require.NoError(t, err)
	assert.NotEqual(t, testAuctionHouse, house.PublicKey)

	fee, err := GetAuctionHouseFeeAddress(&GetAuctionHouseFeeAddressArgs{AuctionHouse: testAuctionHouse})
	require.NoError(t, err)
	assert.NotEqual(t, nightMarketFeeAccount, fee.PublicKey)

	treasury, err := GetAuctionHouseTreasuryAddress(&GetAuctionHouseTreasuryAddressArgs{AuctionHouse: testAuctionHouse})
	require.NoError(t, err)
	assert.NotEqual(t, nightMarketTreasuryAccount, treasury.PublicKey)
}

// Vectors of the Metaplex deployment, the fallback program.
func TestGetAuctionHouseAddresses(t *testing.T) {
	for _, tc := range []struct {
		name     string
		derive   func() (solana.DerivedAddress, error)
		expected string
		bump     uint8
	}{
		{
			name: "auction house",
			derive: func() (solana.DerivedAddress, error) {
				return GetAuctionHouseAddress(&GetAuctionHouseAddressArgs{Creator: testAuthority, TreasuryMint: testTreasuryMint})
			},
			expected: "6hW2rVdPUD5qn1amEvN3K9zkvgsCA34LqCvTPcpamQHc",
			bump:     255,
		},
		{
			name: "fee account",
			derive: func() (solana.DerivedAddress, error) {
				return GetAuctionHouseFeeAddress(&GetAuctionHouseFeeAddressArgs{AuctionHouse: testAuctionHouse})
			},
			expected: "FCyyT7uE438dc5qwKR18ZfZywJRXTmrxs55MJP4rViZo",
			bump:     253,
		},
		{
			name: "treasury",
			derive: func() (solana.DerivedAddress, error) {
				return GetAuctionHouseTreasuryAddress(&GetAuctionHouseTreasuryAddressArgs{AuctionHouse: testAuctionHouse})
			},
			expected: "HLcb2FngoNme5poJd6imfczLH4m9jEJvJJ8YEaizLxTB",
			bump:     255,
		},
		{
			name: "program as signer",
			derive: func() (solana.DerivedAddress, error) {
				return GetProgramAsSignerAddress(nil)
			},
			expected: "HS2eL9WJbh7pA4i4veK3YDwhGLRjY3uKryvG1NbHRprj",
			bump:     255,
		},
		{
			name: "escrow payment",
			derive: func() (solana.DerivedAddress, error) {
				return GetEscrowPaymentAddress(&GetEscrowPaymentAddressArgs{AuctionHouse: testAuctionHouse, Wallet: testWallet})
			},
			expected: "EqcT2fkBTYrhjvufxrxqotsnu24CqxGNHMDgqVF249FL",
			bump:     254,
		},
		{
			name: "auctioneer",
			derive: func() (solana.DerivedAddress, error) {
				return GetAuctioneerAddress(&GetAuctioneerAddressArgs{AuctionHouse: testAuctionHouse, Auctioneer: testRewardCenter})
			},
			expected: "3Fstd8GWxG2WamUTnoCfhdjE6M14h8fYifYeFnjFuKnV",
			bump:     252,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := tc.derive()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual.String())
			assert.Equal(t, tc.bump, actual.Bump)

			again, err := tc.derive()
			require.NoError(t, err)
			assert.Equal(t, actual, again)
		})
	}
}

func TestGetTradeStateAddress(t *testing.T) {
	args := &GetTradeStateAddressArgs{
		Wallet:       testWallet,
		AuctionHouse: testAuctionHouse,
		TokenAccount: testTokenAccount,
		TreasuryMint: testTreasuryMint,
		TokenMint:    testMint,
		Price:        1_500_000_000,
		TokenSize:    1,
	}

	priced, err := GetTradeStateAddress(args)
	require.NoError(t, err)
	assert.Equal(t, "CK3h9Eeno51sop7vz8aVuH5j61SWNUzSVcuJ3RGskdyD", priced.String())
	assert.EqualValues(t, 254, priced.Bump)

	args.Price = 0
	free, err := GetTradeStateAddress(args)
	require.NoError(t, err)
	assert.Equal(t, "7B9BkKatYPNgaXMDZDU8GdmrEjtnQQEVbsa76ia1cVzW", free.String())

	args.Price = AuctioneerPrice
	maxPrice, err := GetTradeStateAddress(args)
	require.NoError(t, err)

	auctioneer, err := GetAuctioneerTradeStateAddress(&GetAuctioneerTradeStateAddressArgs{
		Wallet:       testWallet,
		AuctionHouse: testAuctionHouse,
		TokenAccount: testTokenAccount,
		TreasuryMint: testTreasuryMint,
		TokenMint:    testMint,
		TokenSize:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "5nmayFsNBkvGtr61m2Gu8HufeALX4RmuakxTS7xJwoCz", auctioneer.String())
	assert.EqualValues(t, 252, auctioneer.Bump)
	assert.Equal(t, maxPrice, auctioneer)
}

func TestGetPublicBidTradeStateAddress(t *testing.T) {
	actual, err := GetPublicBidTradeStateAddress(&GetPublicBidTradeStateAddressArgs{
		Wallet:       testWallet,
		AuctionHouse: testAuctionHouse,
		TreasuryMint: testTreasuryMint,
		TokenMint:    testMint,
		Price:        1_500_000_000,
		TokenSize:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "ESp4Q8GBTio7T6rm8bxaxPqxCw71Aj3oWBRucEy8ktdn", actual.String())
}

func TestGetReceiptAddresses(t *testing.T) {
	tradeState := solana.MustPublicKeyFromString("CK3h9Eeno51sop7vz8aVuH5j61SWNUzSVcuJ3RGskdyD")

	listing, err := GetListingReceiptAddress(&GetListingReceiptAddressArgs{TradeState: tradeState})
	require.NoError(t, err)
	assert.Equal(t, "6gXq9THkp86Pm8FMvittRLJLPskHXd6s2WXW7ifc4LzC", listing.String())

	bid, err := GetBidReceiptAddress(&GetBidReceiptAddressArgs{TradeState: tradeState})
	require.NoError(t, err)
	assert.Equal(t, "28fX7hKPKbxB7za8ETeJ5q21VzCPnsjpD2MzAW13P7YR", bid.String())

	purchase, err := GetPurchaseReceiptAddress(&GetPurchaseReceiptAddressArgs{
		SellerTradeState: tradeState,
		BuyerTradeState:  testRewardCenter,
	})
	require.NoError(t, err)
	assert.Equal(t, "9DYzb9bPgoPi3e1X3ciq5F2Xak9UcmZWCr7zmGVWTxuo", purchase.String())
}

func TestProgramOverride(t *testing.T) {
	defaultSigner, err := GetProgramAsSignerAddress(nil)
	require.NoError(t, err)

	explicit, err := GetProgramAsSignerAddress(PROGRAM_ID)
	require.NoError(t, err)
	assert.Equal(t, defaultSigner, explicit)

	other, err := GetProgramAsSignerAddress(testRewardCenter)
	require.NoError(t, err)
	assert.NotEqual(t, defaultSigner.PublicKey, other.PublicKey)
}
