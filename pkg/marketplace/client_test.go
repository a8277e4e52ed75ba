package marketplace

import (
	"context"
	"crypto/ed25519"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/indexer"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain/memory"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain/tests"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	address_lookup_table "github.com/motleylabs/mtly-nightmarket-go/pkg/solana/addresslookuptable"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/auctionhouse"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/tokenmetadata"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/testutil"
)

type clientEnv struct {
	*testEnv
	client *Client
}

func setupClient(t *testing.T, config Config, handler http.HandlerFunc) *clientEnv {
	env := setup(t)

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config.APIEndpoint = server.URL
	client, err := NewClient(env.ctx, config, WithProvider(env.provider))
	require.NoError(t, err)
	env.ah = client.AuctionHouse()

	return &clientEnv{testEnv: env, client: client}
}

func (e *clientEnv) putLookupTable(t *testing.T, addresses ...ed25519.PublicKey) {
	e.provider.Put(solana.MustPublicKeyFromString(DefaultAddressLookupTable), solana.AccountInfo{
		Data:  tests.NewLookupTableData(math.MaxUint64, addresses...),
		Owner: address_lookup_table.ProgramKey,
	})
}

type panicProvider struct{}

func (panicProvider) GetAccountInfo(_ context.Context, _ ed25519.PublicKey) (solana.AccountInfo, error) {
	panic("connection closed")
}

func TestClient_GetListing(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)
	seller, program, auctionHouse, unlisted := keys[0], keys[1], keys[2], keys[3]

	env := setupClient(t, newTestConfig(t), func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/"+base58.Encode(unlisted)) {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"latestListing": {
				"userAddress": "` + base58.Encode(seller) + `",
				"price": "1500000000",
				"signature": "sig",
				"blockTimestamp": 1700000000,
				"auctionHouseProgram": "` + base58.Encode(program) + `",
				"auctionHouseAddress": "` + base58.Encode(auctionHouse) + `"
			}
		}`))
	})

	listing := env.client.GetListing(env.ctx, env.mint)
	require.NotNil(t, listing)
	assert.EqualValues(t, seller, listing.Seller)
	assert.Equal(t, 1.5, listing.Price)
	assert.EqualValues(t, 1_500_000_000, listing.PriceLamports)
	assert.Equal(t, "sig", listing.Signature)
	assert.EqualValues(t, program, listing.AuctionHouseProgram)

	assert.Nil(t, env.client.GetListing(env.ctx, unlisted))
}

func TestClient_ReadFailuresAreEmpty(t *testing.T) {
	for _, handler := range []http.HandlerFunc{
		nil,
		func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) },
		func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
	} {
		env := setupClient(t, newTestConfig(t), handler)

		assert.Nil(t, env.client.GetListing(env.ctx, env.mint))

		offers := env.client.GetOffers(env.ctx, env.mint)
		assert.NotNil(t, offers)
		assert.Empty(t, offers)
	}
}

func TestClient_GetOffers(t *testing.T) {
	buyer := testutil.GenerateSolanaKey(t)

	env := setupClient(t, newTestConfig(t), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfts/offers", r.URL.Path)
		_, _ = w.Write([]byte(`[{
			"buyer": "` + base58.Encode(buyer) + `",
			"seller": null,
			"price": "250000000",
			"signature": "sig",
			"blockTimestamp": 1700000000
		}]`))
	})

	offers := env.client.GetOffers(env.ctx, env.mint)
	require.Len(t, offers, 1)
	assert.EqualValues(t, buyer, offers[0].Buyer)
	assert.Nil(t, offers[0].Seller)
	assert.Equal(t, 0.25, offers[0].Price)
}

func TestClient_CreateListing(t *testing.T) {
	env := setupClient(t, newTestConfig(t), nil)
	env.putMetadata(t, tokenmetadata.TokenStandardNonFungible)
	env.putLookupTable(t, env.ah.Address, env.ah.Authority)

	action := env.client.CreateListing(env.ctx, env.mint, 1.5, env.seller)
	require.NoError(t, action.Err)
	assert.Len(t, action.Instructions, 4)
	require.Len(t, action.AddressLookupTables, 1)

	txn, err := action.Transaction(env.seller, solana.Blockhash{1})
	require.NoError(t, err)
	assert.Equal(t, solana.MessageVersion0, txn.Message.Version())
}

func TestClient_LookupTableUnavailable(t *testing.T) {
	env := setupClient(t, newTestConfig(t), nil)
	env.putMetadata(t, tokenmetadata.TokenStandardNonFungible)

	action := env.client.CloseListing(env.ctx, env.mint, env.seller)
	require.NoError(t, action.Err)
	assert.NotEmpty(t, action.Instructions)
	assert.Empty(t, action.AddressLookupTables)

	txn, err := action.Transaction(env.seller, solana.Blockhash{1})
	require.NoError(t, err)
	assert.Equal(t, solana.MessageVersionLegacy, txn.Message.Version())
}

func TestClient_LookupTableDisabled(t *testing.T) {
	config := newTestConfig(t)
	config.AddressLookupTable = ""

	env := setupClient(t, config, nil)
	env.putMetadata(t, tokenmetadata.TokenStandardNonFungible)
	env.putLookupTable(t, env.ah.Address)

	action := env.client.BuyListing(env.ctx, env.mint, 1, env.seller, env.buyer)
	require.NoError(t, action.Err)
	assert.Empty(t, action.AddressLookupTables)
	assert.Equal(t, 1, env.provider.TotalCalls())
}

func TestClient_SmallActionsSkipLookupTable(t *testing.T) {
	env := setupClient(t, newTestConfig(t), nil)
	env.putLookupTable(t, env.ah.Address)

	for _, action := range []*Action{
		env.client.UpdateListing(env.ctx, env.mint, 2, env.seller),
		env.client.CreateOffer(env.ctx, env.mint, 2, env.seller, env.buyer),
		env.client.CloseOffer(env.ctx, env.mint, 2, env.seller, env.buyer),
	} {
		require.NoError(t, action.Err)
		assert.NotEmpty(t, action.Instructions)
		assert.Empty(t, action.AddressLookupTables)
	}
	assert.Zero(t, env.provider.TotalCalls())
}

func TestClient_ActionErrors(t *testing.T) {
	config := newTestConfig(t)
	config.AuctionHouse.RewardCenter = nil

	env := setupClient(t, config, nil)
	env.putMetadata(t, tokenmetadata.TokenStandardNonFungible)

	for _, action := range []*Action{
		env.client.CreateListing(env.ctx, env.mint, 1.5, env.seller),
		env.client.UpdateListing(env.ctx, env.mint, 1.5, env.seller),
		env.client.CloseListing(env.ctx, env.mint, env.seller),
		env.client.CreateOffer(env.ctx, env.mint, 1.5, env.seller, env.buyer),
		env.client.CloseOffer(env.ctx, env.mint, 1.5, env.seller, env.buyer),
		env.client.AcceptOffer(env.ctx, env.mint, 1.5, env.seller, env.buyer),
		env.client.BuyListing(env.ctx, env.mint, 1.5, env.seller, env.buyer),
	} {
		assert.Equal(t, ErrRewardCenterNotFound, action.Err)
		assert.Empty(t, action.Instructions)
		assert.Empty(t, action.AddressLookupTables)

		_, err := action.Transaction(env.seller, solana.Blockhash{})
		assert.Error(t, err)
	}
	assert.Zero(t, env.provider.TotalCalls())
}

func TestClient_MetadataNotFound(t *testing.T) {
	env := setupClient(t, newTestConfig(t), nil)
	env.putLookupTable(t, env.ah.Address)

	action := env.client.AcceptOffer(env.ctx, env.mint, 1.5, env.seller, env.buyer)
	assert.Equal(t, ErrMetadataNotFound, action.Err)
	assert.Empty(t, action.Instructions)
	assert.Empty(t, action.AddressLookupTables)
	assert.Equal(t, 1, env.provider.TotalCalls())
}

func TestClient_RecoversPanics(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	config := newTestConfig(t)
	config.APIEndpoint = server.URL

	client, err := NewClient(context.Background(), config, WithProvider(panicProvider{}), WithIndexer(indexer.NewClient(server.URL)))
	require.NoError(t, err)

	keys := testutil.GenerateSolanaKeys(t, 2)
	action := client.CreateListing(context.Background(), keys[0], 1, keys[1])
	require.Error(t, action.Err)
	assert.Contains(t, action.Err.Error(), "connection closed")
	assert.Empty(t, action.Instructions)
}

func TestClient_ConfigIsCopied(t *testing.T) {
	config := newTestConfig(t)
	client, err := NewClient(context.Background(), config, WithProvider(memory.New()))
	require.NoError(t, err)

	config.APIEndpoint = "https://example.com"
	config.AuctionHouse.RewardCenter.TokenMint = "changed"

	actual := client.Config()
	assert.Equal(t, DefaultAPIEndpoint, actual.APIEndpoint)
	assert.Equal(t, DefaultConfig().AuctionHouse.RewardCenter.TokenMint, actual.AuctionHouse.RewardCenter.TokenMint)

	actual.AuctionHouse.RewardCenter.TokenMint = "changed"
	assert.Equal(t, DefaultConfig().AuctionHouse.RewardCenter.TokenMint, client.Config().AuctionHouse.RewardCenter.TokenMint)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.RPCEndpoint = "not a url"

	_, err := NewClient(context.Background(), config)
	assert.Error(t, err)
}

func TestNewClient_ProgramFromChain(t *testing.T) {
	config := newTestConfig(t)
	program := solana.MustPublicKeyFromString(config.AuctionHouse.Program)
	house := solana.MustPublicKeyFromString(config.AuctionHouse.Address)
	config.AuctionHouse.Program = ""

	provider := memory.New()
	provider.Put(house, solana.AccountInfo{Owner: program, Lamports: 1})

	client, err := NewClient(context.Background(), config, WithProvider(provider))
	require.NoError(t, err)
	assert.EqualValues(t, program, client.AuctionHouse().Program)
	assert.Equal(t, 1, provider.Calls(house))
	assert.Empty(t, client.Config().AuctionHouse.Program)
}

func TestNewClient_ProgramFromChain_Invalid(t *testing.T) {
	config := DefaultConfig()
	house := solana.MustPublicKeyFromString(config.AuctionHouse.Address)

	provider := memory.New()
	_, err := NewClient(context.Background(), config, WithProvider(provider))
	assert.ErrorIs(t, err, chain.ErrAccountNotFound)

	// The production house is not derived by the Metaplex program.
	provider.Put(house, solana.AccountInfo{Owner: auctionhouse.PROGRAM_ID, Lamports: 1})
	_, err = NewClient(context.Background(), config, WithProvider(provider))
	assert.Error(t, err)

	provider.Put(house, solana.AccountInfo{Owner: testutil.GenerateSolanaKey(t), Lamports: 1})
	_, err = NewClient(context.Background(), config, WithProvider(provider))
	assert.Error(t, err)
}
