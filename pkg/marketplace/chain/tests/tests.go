package tests

import (
	"context"
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	address_lookup_table "github.com/motleylabs/mtly-nightmarket-go/pkg/solana/addresslookuptable"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/tokenmetadata"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/testutil"
)

// Seeder stores an account so the provider under test can read it.
type Seeder func(address ed25519.PublicKey, info solana.AccountInfo)

func RunTests(t *testing.T, provider chain.Provider, seed Seeder, teardown func()) {
	for _, tf := range []func(t *testing.T, provider chain.Provider, seed Seeder){
		testGetAccountInfo,
		testAccountExists,
		testGetMetadata,
		testGetAddressLookupTable,
	} {
		tf(t, provider, seed)
		teardown()
	}
}

func testGetAccountInfo(t *testing.T, provider chain.Provider, seed Seeder) {
	t.Run("testGetAccountInfo", func(t *testing.T) {
		ctx := context.Background()
		keys := testutil.GenerateSolanaKeys(t, 2)

		_, err := provider.GetAccountInfo(ctx, keys[0])
		assert.Equal(t, chain.ErrAccountNotFound, err)

		expected := solana.AccountInfo{
			Data:     []byte{1, 2, 3},
			Owner:    keys[1],
			Lamports: 42,
		}
		seed(keys[0], expected)

		actual, err := provider.GetAccountInfo(ctx, keys[0])
		require.NoError(t, err)
		assert.Equal(t, expected.Data, actual.Data)
		assert.EqualValues(t, expected.Owner, actual.Owner)
		assert.Equal(t, expected.Lamports, actual.Lamports)
	})
}

func testAccountExists(t *testing.T, provider chain.Provider, seed Seeder) {
	t.Run("testAccountExists", func(t *testing.T) {
		ctx := context.Background()
		keys := testutil.GenerateSolanaKeys(t, 2)

		exists, err := chain.AccountExists(ctx, provider, keys[0])
		require.NoError(t, err)
		assert.False(t, exists)

		seed(keys[0], solana.AccountInfo{Data: []byte{0}, Owner: keys[1]})

		exists, err = chain.AccountExists(ctx, provider, keys[0])
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func testGetMetadata(t *testing.T, provider chain.Provider, seed Seeder) {
	t.Run("testGetMetadata", func(t *testing.T) {
		ctx := context.Background()
		keys := testutil.GenerateSolanaKeys(t, 4)

		_, err := chain.GetMetadata(ctx, provider, keys[0])
		assert.Equal(t, chain.ErrAccountNotFound, err)

		standard := tokenmetadata.TokenStandardProgrammableNonFungible
		expected := &tokenmetadata.Metadata{
			Key:                  tokenmetadata.KeyMetadataV1,
			UpdateAuthority:      keys[1],
			Mint:                 keys[2],
			Name:                 "name",
			Symbol:               "SYM",
			URI:                  "https://example.com",
			SellerFeeBasisPoints: 250,
			Creators:             []tokenmetadata.Creator{{Address: keys[1], Verified: true, Share: 100}},
			TokenStandard:        &standard,
			ProgrammableConfig:   &tokenmetadata.ProgrammableConfig{RuleSet: keys[3]},
		}
		data, err := expected.Marshal()
		require.NoError(t, err)

		seed(keys[0], solana.AccountInfo{Data: data, Owner: keys[3]})
		_, err = chain.GetMetadata(ctx, provider, keys[0])
		assert.True(t, errors.Is(err, chain.ErrInvalidOwner))

		seed(keys[0], solana.AccountInfo{Data: data, Owner: tokenmetadata.PROGRAM_ID})
		actual, err := chain.GetMetadata(ctx, provider, keys[0])
		require.NoError(t, err)
		assert.Equal(t, expected.Name, actual.Name)
		assert.True(t, actual.IsProgrammable())
		assert.EqualValues(t, keys[3], actual.RuleSet())
		require.Len(t, actual.Creators, 1)

		seed(keys[0], solana.AccountInfo{Data: []byte{9, 9}, Owner: tokenmetadata.PROGRAM_ID})
		_, err = chain.GetMetadata(ctx, provider, keys[0])
		assert.Error(t, err)
	})
}

func testGetAddressLookupTable(t *testing.T, provider chain.Provider, seed Seeder) {
	t.Run("testGetAddressLookupTable", func(t *testing.T) {
		ctx := context.Background()
		keys := testutil.GenerateSolanaKeys(t, 4)

		_, err := chain.GetAddressLookupTable(ctx, provider, keys[0])
		assert.Equal(t, chain.ErrAccountNotFound, err)

		seed(keys[0], solana.AccountInfo{
			Data:  NewLookupTableData(math.MaxUint64, keys[1:]...),
			Owner: address_lookup_table.ProgramKey,
		})
		table, err := chain.GetAddressLookupTable(ctx, provider, keys[0])
		require.NoError(t, err)
		assert.EqualValues(t, keys[0], table.PublicKey)
		require.Len(t, table.Addresses, 3)
		for i, address := range table.Addresses {
			assert.EqualValues(t, keys[i+1], address)
		}

		seed(keys[0], solana.AccountInfo{
			Data:  NewLookupTableData(10, keys[1:]...),
			Owner: address_lookup_table.ProgramKey,
		})
		_, err = chain.GetAddressLookupTable(ctx, provider, keys[0])
		assert.Error(t, err)

		seed(keys[0], solana.AccountInfo{
			Data:  NewLookupTableData(math.MaxUint64, keys[1:]...),
			Owner: keys[1],
		})
		_, err = chain.GetAddressLookupTable(ctx, provider, keys[0])
		assert.True(t, errors.Is(err, chain.ErrInvalidOwner))
	})
}

// NewLookupTableData encodes an address lookup table account.
func NewLookupTableData(deactivationSlot uint64, addresses ...ed25519.PublicKey) []byte {
	const metadataSize = 56

	data := make([]byte, metadataSize, metadataSize+len(addresses)*ed25519.PublicKeySize)
	data[0] = 1
	for i := 0; i < 8; i++ {
		data[4+i] = byte(deactivationSlot >> (8 * i))
	}
	for _, address := range addresses {
		data = append(data, address...)
	}
	return data
}
