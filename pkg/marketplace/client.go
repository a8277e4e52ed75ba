// Package marketplace builds the instructions of every Night Market action
// and reads listings and offers from the indexing API.
package marketplace

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/indexer"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain/rpc"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/metrics"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/rate"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

const (
	metricsStructName = "marketplace.client"

	actionEventName = "MarketplaceAction"

	lookupTableFailureMetricName = "marketplace.client.lookup_table.failure"
)

// Client is the entry point of the library. Its methods are safe for
// concurrent use; no state is shared between calls.
type Client struct {
	log *logrus.Entry

	config       Config
	auctionHouse *AuctionHouse
	lookupTable  ed25519.PublicKey

	provider chain.Provider
	indexer  *indexer.Client
	builder  *Builder
}

type ClientOption func(*Client)

// WithProvider replaces the JSON-RPC backed chain provider.
func WithProvider(provider chain.Provider) ClientOption {
	return func(c *Client) {
		c.provider = provider
	}
}

// WithIndexer replaces the indexing API client built from the config.
func WithIndexer(client *indexer.Client) ClientOption {
	return func(c *Client) {
		c.indexer = client
	}
}

// NewClient returns a client for the configured marketplace. When the config
// has no auction house program, it is read from the chain. The config is
// copied; later changes to it have no effect.
func NewClient(ctx context.Context, config Config, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	commitment, err := parseCommitment(config.Commitment)
	if err != nil {
		return nil, err
	}

	c := &Client{
		log:    logrus.StandardLogger().WithField("type", "marketplace/client"),
		config: config.clone(),
	}

	if len(config.AddressLookupTable) > 0 {
		c.lookupTable = solana.MustPublicKeyFromString(config.AddressLookupTable)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		c.provider = rpc.New(solana.New(config.RPCEndpoint), commitment)
	}

	if c.indexer == nil {
		var indexerOpts []indexer.Option
		if config.IndexerRateLimit > 0 {
			indexerOpts = append(indexerOpts, indexer.WithRateLimiter(
				rate.NewLocalRateLimiter(xrate.Limit(config.IndexerRateLimit)),
			))
		}
		c.indexer = indexer.NewClient(config.APIEndpoint, indexerOpts...)
	}

	auctionHouse, err := config.AuctionHouse.Bind(ctx, c.provider)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve auction house")
	}
	c.auctionHouse = auctionHouse

	c.builder = NewBuilder(auctionHouse, c.provider, config.ComputeUnitPrice)

	return c, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return c.config.clone()
}

// AuctionHouse returns the decoded auction house the client trades on.
func (c *Client) AuctionHouse() *AuctionHouse {
	return c.auctionHouse
}

// GetListing returns the latest listing of the mint, or nil when it is not
// listed or the indexer could not be read.
func (c *Client) GetListing(ctx context.Context, mint ed25519.PublicKey) *indexer.Listing {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetListing")
	defer tracer.End()

	listing, err := c.indexer.GetListing(ctx, mint)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method": "GetListing",
			"mint":   base58.Encode(mint),
		}).WithError(err).Debug("no listing")
		return nil
	}
	return listing
}

// GetOffers returns the open offers on the mint. It is empty when there are
// none or the indexer could not be read.
func (c *Client) GetOffers(ctx context.Context, mint ed25519.PublicKey) []*indexer.Offer {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetOffers")
	defer tracer.End()

	offers, err := c.indexer.GetOffers(ctx, mint)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method": "GetOffers",
			"mint":   base58.Encode(mint),
		}).WithError(err).Debug("no offers")
		return []*indexer.Offer{}
	}
	return offers
}

// CreateListing lists the mint for price SOL.
func (c *Client) CreateListing(ctx context.Context, mint ed25519.PublicKey, price float64, seller ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &ListingArgs{Mint: mint, Seller: seller, Price: price}
	return c.run(ctx, "CreateListing", mint, seller, true, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.CreateListing(ctx, args, opts...)
	})
}

// UpdateListing changes the price of the seller's listing to price SOL.
func (c *Client) UpdateListing(ctx context.Context, mint ed25519.PublicKey, price float64, seller ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &ListingArgs{Mint: mint, Seller: seller, Price: price}
	return c.run(ctx, "UpdateListing", mint, seller, false, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.UpdateListing(ctx, args, opts...)
	})
}

// CloseListing cancels the seller's listing of the mint.
func (c *Client) CloseListing(ctx context.Context, mint ed25519.PublicKey, seller ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &ListingArgs{Mint: mint, Seller: seller}
	return c.run(ctx, "CloseListing", mint, seller, true, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.CloseListing(ctx, args, opts...)
	})
}

// CreateOffer offers price SOL for the mint held by seller.
func (c *Client) CreateOffer(ctx context.Context, mint ed25519.PublicKey, price float64, seller, buyer ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &OfferArgs{Mint: mint, Seller: seller, Buyer: buyer, Price: price}
	return c.run(ctx, "CreateOffer", mint, buyer, false, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.CreateOffer(ctx, args, opts...)
	})
}

// CloseOffer cancels the buyer's offer of price SOL.
func (c *Client) CloseOffer(ctx context.Context, mint ed25519.PublicKey, price float64, seller, buyer ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &OfferArgs{Mint: mint, Seller: seller, Buyer: buyer, Price: price}
	return c.run(ctx, "CloseOffer", mint, buyer, false, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.CloseOffer(ctx, args, opts...)
	})
}

// AcceptOffer sells the mint to the buyer for its offer of price SOL.
func (c *Client) AcceptOffer(ctx context.Context, mint ed25519.PublicKey, price float64, seller, buyer ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &OfferArgs{Mint: mint, Seller: seller, Buyer: buyer, Price: price}
	return c.run(ctx, "AcceptOffer", mint, seller, true, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.AcceptOffer(ctx, args, opts...)
	})
}

// BuyListing buys the seller's listing of the mint for price SOL.
func (c *Client) BuyListing(ctx context.Context, mint ed25519.PublicKey, price float64, seller, buyer ed25519.PublicKey, opts ...BuildOption) *Action {
	args := &OfferArgs{Mint: mint, Seller: seller, Buyer: buyer, Price: price}
	return c.run(ctx, "BuyListing", mint, buyer, true, func(ctx context.Context) ([]solana.Instruction, error) {
		return c.builder.BuyListing(ctx, args, opts...)
	})
}

type buildFunc func(ctx context.Context) ([]solana.Instruction, error)

// run executes one action and converts every failure, including panics,
// into Action.Err.
func (c *Client) run(
	ctx context.Context,
	method string,
	mint ed25519.PublicKey,
	wallet ed25519.PublicKey,
	withLookupTable bool,
	build buildFunc,
) (action *Action) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()

	fields := logrus.Fields{
		"mint":   base58.Encode(mint),
		"wallet": base58.Encode(wallet),
	}
	tracer.AddAttributes(fields)

	log := c.log.WithFields(fields).WithField("method", method)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			action = &Action{Err: errors.Errorf("panic building %s: %v", method, r)}
		}

		if action.Err != nil {
			tracer.OnError(action.Err)
			log.WithError(action.Err).Warn("failed to build action")
		}

		tracer.AddAttribute("instructions", len(action.Instructions))
		metrics.RecordDuration(ctx, fmt.Sprintf("%s.%s.duration", metricsStructName, method), time.Since(start))
		metrics.RecordEvent(ctx, actionEventName, map[string]interface{}{
			"action":       method,
			"success":      action.Err == nil,
			"instructions": len(action.Instructions),
		})
	}()

	action = newAction(build(ctx))
	if action.Err == nil && withLookupTable {
		action.AddressLookupTables = c.resolveLookupTables(ctx, log)
	}
	return action
}

// resolveLookupTables fetches the configured lookup table. Failures only
// drop the table from the action.
func (c *Client) resolveLookupTables(ctx context.Context, log *logrus.Entry) []solana.AddressLookupTable {
	if len(c.lookupTable) == 0 {
		return nil
	}

	table, err := chain.GetAddressLookupTable(ctx, c.provider, c.lookupTable)
	if err != nil {
		metrics.RecordCount(ctx, lookupTableFailureMetricName, 1)
		log.WithError(err).WithField("lookup_table", base58.Encode(c.lookupTable)).Warn("failed to resolve address lookup table")
		return nil
	}
	return []solana.AddressLookupTable{table}
}
