// Package indexer reads listings and offers from the Night Market indexing API.
package indexer

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/metrics"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/rate"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/sol"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

const (
	DefaultApiBaseUrl = "https://api.nightmarket.io/api"

	nftsEndpointName   = "nfts"
	offersEndpointName = "nfts/offers"

	metricsStructName = "indexer.client"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
)

// Listing is the latest listing of an NFT.
type Listing struct {
	Seller              ed25519.PublicKey
	Price               float64
	PriceLamports       uint64
	Signature           string
	BlockTimestamp      time.Time
	AuctionHouseProgram ed25519.PublicKey
	AuctionHouseAddress ed25519.PublicKey
}

// Offer is an open offer on an NFT. Seller is nil for offers that are not
// bound to the current holder.
type Offer struct {
	Buyer               ed25519.PublicKey
	Seller              ed25519.PublicKey
	Price               float64
	PriceLamports       uint64
	Signature           string
	BlockTimestamp      time.Time
	AuctionHouseProgram ed25519.PublicKey
	AuctionHouseAddress ed25519.PublicKey
}

type Client struct {
	log        *logrus.Entry
	baseUrl    string
	httpClient *http.Client
	limiter    rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimiter limits requests per endpoint. Requests over the limit fail
// with ErrRateLimited instead of waiting.
func WithRateLimiter(limiter rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient returns a new client for the indexing API at baseUrl.
func NewClient(baseUrl string, opts ...Option) *Client {
	c := &Client{
		log:        logrus.StandardLogger().WithField("type", "indexer/client"),
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: http.DefaultClient,
		limiter:    &rate.NoLimiter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type jsonListing struct {
	UserAddress         string `json:"userAddress"`
	Price               string `json:"price"`
	Signature           string `json:"signature"`
	BlockTimestamp      int64  `json:"blockTimestamp"`
	AuctionHouseProgram string `json:"auctionHouseProgram"`
	AuctionHouseAddress string `json:"auctionHouseAddress"`
}

type jsonNft struct {
	LatestListing *jsonListing `json:"latestListing"`
}

type jsonOffer struct {
	Buyer          string  `json:"buyer"`
	Seller         *string `json:"seller"`
	Price          string  `json:"price"`
	Signature      string  `json:"signature"`
	BlockTimestamp int64   `json:"blockTimestamp"`
	// The API misspells this key. MarketplaceProgram is read when it is
	// absent.
	MarketplaceProgramAddress string `json:"martketplaceProgramAddress"`
	MarketplaceProgram        string `json:"marketplaceProgram"`
	AuctionHouseAddress       string `json:"auctionHouseAddress"`
}

// GetListing gets the latest listing of the mint, or ErrNotFound if it is not
// listed.
func (c *Client) GetListing(ctx context.Context, mint ed25519.PublicKey) (*Listing, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetListing")
	defer tracer.End()
	tracer.AddAttribute("mint", base58.Encode(mint))

	var parsed jsonNft
	err := c.get(ctx, nftsEndpointName, fmt.Sprintf("%s/%s/%s", c.baseUrl, nftsEndpointName, base58.Encode(mint)), &parsed)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	if parsed.LatestListing == nil {
		return nil, ErrNotFound
	}

	listing, err := parsed.LatestListing.toListing()
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return listing, nil
}

// GetOffers gets the open offers on the mint.
func (c *Client) GetOffers(ctx context.Context, mint ed25519.PublicKey) ([]*Offer, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetOffers")
	defer tracer.End()
	tracer.AddAttribute("mint", base58.Encode(mint))

	query := url.Values{}
	query.Set("address", base58.Encode(mint))

	var parsed []jsonOffer
	err := c.get(ctx, offersEndpointName, fmt.Sprintf("%s/%s?%s", c.baseUrl, offersEndpointName, query.Encode()), &parsed)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	offers := make([]*Offer, 0, len(parsed))
	for i := range parsed {
		offer, err := parsed[i].toOffer()
		if err != nil {
			tracer.OnError(err)
			return nil, errors.Wrapf(err, "invalid offer at index %d", i)
		}
		offers = append(offers, offer)
	}
	tracer.AddAttribute("offers", len(offers))
	return offers, nil
}

func (c *Client) get(ctx context.Context, endpoint, requestUrl string, out interface{}) error {
	log := c.log.WithFields(logrus.Fields{
		"method": "get",
		"url":    requestUrl,
	})

	allowed, err := c.limiter.Allow(endpoint)
	if err != nil {
		return errors.Wrap(err, "error checking rate limit")
	} else if !allowed {
		return ErrRateLimited
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return errors.Wrap(err, "error creating http request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "error executing http request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response body")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		log.WithField("status", resp.StatusCode).Trace("unexpected http status")
		return errors.Errorf("received http status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "error unmarshalling json response")
	}
	return nil
}

func (l *jsonListing) toListing() (*Listing, error) {
	seller, err := solana.PublicKeyFromString(l.UserAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid seller")
	}

	lamports, err := sol.ParseLamports(l.Price)
	if err != nil {
		return nil, errors.Wrap(err, "invalid price")
	}

	program, err := optionalPublicKey(l.AuctionHouseProgram)
	if err != nil {
		return nil, errors.Wrap(err, "invalid auction house program")
	}
	auctionHouse, err := optionalPublicKey(l.AuctionHouseAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid auction house")
	}

	return &Listing{
		Seller:              seller,
		Price:               sol.FromLamports(lamports),
		PriceLamports:       lamports,
		Signature:           l.Signature,
		BlockTimestamp:      time.Unix(l.BlockTimestamp, 0).UTC(),
		AuctionHouseProgram: program,
		AuctionHouseAddress: auctionHouse,
	}, nil
}

func (o *jsonOffer) toOffer() (*Offer, error) {
	buyer, err := solana.PublicKeyFromString(o.Buyer)
	if err != nil {
		return nil, errors.Wrap(err, "invalid buyer")
	}

	var seller ed25519.PublicKey
	if o.Seller != nil {
		seller, err = optionalPublicKey(*o.Seller)
		if err != nil {
			return nil, errors.Wrap(err, "invalid seller")
		}
	}

	lamports, err := sol.ParseLamports(o.Price)
	if err != nil {
		return nil, errors.Wrap(err, "invalid price")
	}

	programAddress := o.MarketplaceProgramAddress
	if len(programAddress) == 0 {
		programAddress = o.MarketplaceProgram
	}
	program, err := optionalPublicKey(programAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid marketplace program")
	}
	auctionHouse, err := optionalPublicKey(o.AuctionHouseAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid auction house")
	}

	return &Offer{
		Buyer:               buyer,
		Seller:              seller,
		Price:               sol.FromLamports(lamports),
		PriceLamports:       lamports,
		Signature:           o.Signature,
		BlockTimestamp:      time.Unix(o.BlockTimestamp, 0).UTC(),
		AuctionHouseProgram: program,
		AuctionHouseAddress: auctionHouse,
	}, nil
}

func optionalPublicKey(value string) (ed25519.PublicKey, error) {
	if value == "" {
		return nil, nil
	}
	return solana.PublicKeyFromString(value)
}
