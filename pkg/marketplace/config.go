package marketplace

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"net/url"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/auctionhouse"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/rewardcenter"
)

const (
	DefaultAPIEndpoint        = "https://api.nightmarket.io/api"
	DefaultRPCEndpoint        = "https://api.mainnet-beta.solana.com"
	DefaultAddressLookupTable = "HQma5N1kPpYiQBMUx4CqDSuUyjCzNHhvRtRz1qTBNtNp"
	DefaultComputeUnitPrice   = 1000

	wrappedSolMint = "So11111111111111111111111111111111111111112"
)

// PayoutOperation is how the reward center scales the sale price into
// reward tokens.
type PayoutOperation uint8

const (
	PayoutOperationMultiple PayoutOperation = iota
	PayoutOperationDivide
)

// RewardCenterConfig describes the reward token economics attached to an
// auction house.
type RewardCenterConfig struct {
	Address           string          `mapstructure:"address"`
	TokenMint         string          `mapstructure:"token_mint"`
	PayoutBasisPoints uint16          `mapstructure:"payout_basis_points"`
	PayoutNumeral     uint16          `mapstructure:"payout_numeral"`
	PayoutOperation   PayoutOperation `mapstructure:"payout_operation"`
}

// AuctionHouseConfig identifies one marketplace instance.
type AuctionHouseConfig struct {
	// Program is the auction house program id. When empty, it is the owner
	// of the auction house account, read when the client is created.
	Program string `mapstructure:"program"`

	Address              string `mapstructure:"address"`
	Authority            string `mapstructure:"authority"`
	FeeAccount           string `mapstructure:"fee_account"`
	TreasuryAccount      string `mapstructure:"treasury_account"`
	TreasuryMint         string `mapstructure:"treasury_mint"`
	SellerFeeBasisPoints uint16 `mapstructure:"seller_fee_basis_points"`

	RewardCenter *RewardCenterConfig `mapstructure:"reward_center"`
}

// Config is the client configuration. It is copied when a Client is
// created and never modified afterwards.
type Config struct {
	AuctionHouse AuctionHouseConfig `mapstructure:"auction_house"`

	APIEndpoint string `mapstructure:"api_endpoint"`
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// AddressLookupTable is attached to large actions. Empty disables it.
	AddressLookupTable string `mapstructure:"address_lookup_table"`

	// Commitment used for on-chain reads: processed, confirmed or finalized.
	Commitment string `mapstructure:"commitment"`

	// ComputeUnitPrice in micro-lamports, attached to listing creation.
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price"`

	// IndexerRateLimit caps indexer requests per second. Zero disables it.
	IndexerRateLimit float64 `mapstructure:"indexer_rate_limit"`
}

// DefaultConfig returns the configuration of the production Night Market
// instance.
func DefaultConfig() Config {
	return Config{
		AuctionHouse: AuctionHouseConfig{
			Address:              "FVmjRUm2ssXi5vZUhwzB2HfXzTVzvE73x3f5NmTtZ7C8",
			Authority:            "MtLyd5Jf2V3YbkUyRPR4VSUaa1MYw38c2U6dCwg4WUv",
			FeeAccount:           "9AhUsSTdzZzi6MJcFGQkZam4zYQSNT1Lqz83P3viyqJk",
			TreasuryAccount:      "Ad7toYmfWGMYeB3gsDXTPFRgUhkNwvimZxC69nzkqJK7",
			TreasuryMint:         wrappedSolMint,
			SellerFeeBasisPoints: 100,
			RewardCenter: &RewardCenterConfig{
				Address:         "DzDX1vvRamMeAdcKCdsekcqeqLgRosF7NEZcDwWFWLRk",
				TokenMint:       "SAUCEvCGBkPPDPsiSWG5heGNMw68mc6EMuyGYwAfgaD",
				PayoutOperation: PayoutOperationMultiple,
			},
		},
		APIEndpoint:        DefaultAPIEndpoint,
		RPCEndpoint:        DefaultRPCEndpoint,
		AddressLookupTable: DefaultAddressLookupTable,
		Commitment:         "confirmed",
		ComputeUnitPrice:   DefaultComputeUnitPrice,
	}
}

func (c Config) clone() Config {
	if c.AuctionHouse.RewardCenter != nil {
		rc := *c.AuctionHouse.RewardCenter
		c.AuctionHouse.RewardCenter = &rc
	}
	return c
}

var envBindings = map[string]string{
	"api_endpoint":         "NIGHTMARKET_API_ENDPOINT",
	"rpc_endpoint":         "NIGHTMARKET_RPC_ENDPOINT",
	"address_lookup_table": "NIGHTMARKET_ADDRESS_LOOKUP_TABLE",
	"commitment":           "NIGHTMARKET_COMMITMENT",
	"compute_unit_price":   "NIGHTMARKET_COMPUTE_UNIT_PRICE",
	"indexer_rate_limit":   "NIGHTMARKET_INDEXER_RATE_LIMIT",

	"auction_house.program": "NIGHTMARKET_AUCTION_HOUSE_PROGRAM",
	"auction_house.address": "NIGHTMARKET_AUCTION_HOUSE_ADDRESS",
}

// LoadConfig overlays the values held by v, including the NIGHTMARKET_*
// environment variables, on top of DefaultConfig.
func LoadConfig(v *viper.Viper) (Config, error) {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks that every address decodes and every endpoint is usable.
func (c Config) Validate() error {
	if _, err := c.AuctionHouse.Resolve(); err != nil {
		return err
	}

	for name, endpoint := range map[string]string{"api_endpoint": c.APIEndpoint, "rpc_endpoint": c.RPCEndpoint} {
		u, err := url.Parse(endpoint)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", name)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return errors.Errorf("invalid %s: %q is not an http(s) url", name, endpoint)
		}
	}

	if len(c.AddressLookupTable) > 0 {
		if _, err := solana.PublicKeyFromString(c.AddressLookupTable); err != nil {
			return errors.Wrap(err, "invalid address_lookup_table")
		}
	}

	if _, err := parseCommitment(c.Commitment); err != nil {
		return err
	}

	if c.IndexerRateLimit < 0 {
		return errors.New("indexer_rate_limit must not be negative")
	}

	return nil
}

func parseCommitment(value string) (solana.Commitment, error) {
	switch value {
	case "", solana.CommitmentConfirmed.Commitment:
		return solana.CommitmentConfirmed, nil
	case solana.CommitmentProcessed.Commitment:
		return solana.CommitmentProcessed, nil
	case solana.CommitmentFinalized.Commitment:
		return solana.CommitmentFinalized, nil
	default:
		return solana.Commitment{}, errors.Errorf("invalid commitment %q", value)
	}
}

// RewardCenter is the decoded form of RewardCenterConfig.
type RewardCenter struct {
	Address           ed25519.PublicKey
	TokenMint         ed25519.PublicKey
	PayoutBasisPoints uint16
	PayoutNumeral     uint16
	PayoutOperation   PayoutOperation
}

// AuctionHouse is the decoded form of AuctionHouseConfig consumed by the
// instruction builders.
type AuctionHouse struct {
	Program              ed25519.PublicKey
	Address              ed25519.PublicKey
	Authority            ed25519.PublicKey
	FeeAccount           ed25519.PublicKey
	TreasuryAccount      ed25519.PublicKey
	TreasuryMint         ed25519.PublicKey
	SellerFeeBasisPoints uint16

	// RewardCenter is nil when the auction house has no reward center, in
	// which case every action fails with ErrRewardCenterNotFound.
	RewardCenter *RewardCenter
}

// Resolve decodes every address of the auction house configuration. When a
// program is configured, the auction house, fee and treasury addresses are
// verified against it. Otherwise Program is left empty until Bind.
func (c AuctionHouseConfig) Resolve() (*AuctionHouse, error) {
	ah := &AuctionHouse{
		SellerFeeBasisPoints: c.SellerFeeBasisPoints,
	}

	if c.SellerFeeBasisPoints > 10_000 {
		return nil, errors.Errorf("seller_fee_basis_points %d exceeds 10000", c.SellerFeeBasisPoints)
	}

	if len(c.Program) > 0 {
		program, err := decodeKey("auction_house.program", c.Program)
		if err != nil {
			return nil, err
		}
		ah.Program = program
	}

	fields := []struct {
		name  string
		value string
		dst   *ed25519.PublicKey
	}{
		{"auction_house.address", c.Address, &ah.Address},
		{"auction_house.authority", c.Authority, &ah.Authority},
		{"auction_house.fee_account", c.FeeAccount, &ah.FeeAccount},
		{"auction_house.treasury_account", c.TreasuryAccount, &ah.TreasuryAccount},
		{"auction_house.treasury_mint", c.TreasuryMint, &ah.TreasuryMint},
	}
	for _, field := range fields {
		key, err := decodeKey(field.name, field.value)
		if err != nil {
			return nil, err
		}
		*field.dst = key
	}

	if len(ah.Program) > 0 {
		if err := ah.Verify(); err != nil {
			return nil, err
		}
	}

	if c.RewardCenter == nil {
		return ah, nil
	}

	rc := &RewardCenter{
		PayoutBasisPoints: c.RewardCenter.PayoutBasisPoints,
		PayoutNumeral:     c.RewardCenter.PayoutNumeral,
		PayoutOperation:   c.RewardCenter.PayoutOperation,
	}

	var err error
	if rc.TokenMint, err = decodeKey("auction_house.reward_center.token_mint", c.RewardCenter.TokenMint); err != nil {
		return nil, err
	}

	derived, err := rewardcenter.GetRewardCenterAddress(ah.Address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive reward center address")
	}

	if len(c.RewardCenter.Address) == 0 {
		rc.Address = derived.PublicKey
	} else {
		if rc.Address, err = decodeKey("auction_house.reward_center.address", c.RewardCenter.Address); err != nil {
			return nil, err
		}
		if !bytes.Equal(rc.Address, derived.PublicKey) {
			return nil, errors.Errorf("reward center %s is not derived from auction house %s", c.RewardCenter.Address, c.Address)
		}
	}

	if rc.PayoutOperation > PayoutOperationDivide {
		return nil, errors.Errorf("invalid payout operation %d", rc.PayoutOperation)
	}

	ah.RewardCenter = rc
	return ah, nil
}

// Bind resolves the configuration and, when no program is configured, sets
// it to the owner of the auction house account and verifies the derived
// addresses.
func (c AuctionHouseConfig) Bind(ctx context.Context, provider chain.Provider) (*AuctionHouse, error) {
	ah, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	if len(ah.Program) > 0 {
		return ah, nil
	}

	info, err := provider.GetAccountInfo(ctx, ah.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read auction house %s", c.Address)
	}

	ah.Program = info.Owner
	if err := ah.Verify(); err != nil {
		return nil, err
	}
	return ah, nil
}

// Verify checks that the auction house, fee and treasury accounts are the
// ones Program derives from the authority and treasury mint.
func (ah *AuctionHouse) Verify() error {
	if len(ah.Program) == 0 {
		return ErrProgramNotResolved
	}

	address, err := auctionhouse.GetAuctionHouseAddress(&auctionhouse.GetAuctionHouseAddressArgs{
		Program:      ah.Program,
		Creator:      ah.Authority,
		TreasuryMint: ah.TreasuryMint,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive auction house address")
	}

	fee, err := auctionhouse.GetAuctionHouseFeeAddress(&auctionhouse.GetAuctionHouseFeeAddressArgs{
		Program:      ah.Program,
		AuctionHouse: ah.Address,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive auction house fee address")
	}

	treasury, err := auctionhouse.GetAuctionHouseTreasuryAddress(&auctionhouse.GetAuctionHouseTreasuryAddressArgs{
		Program:      ah.Program,
		AuctionHouse: ah.Address,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive auction house treasury address")
	}

	for _, check := range []struct {
		name     string
		actual   ed25519.PublicKey
		expected ed25519.PublicKey
	}{
		{"auction_house.address", ah.Address, address.PublicKey},
		{"auction_house.fee_account", ah.FeeAccount, fee.PublicKey},
		{"auction_house.treasury_account", ah.TreasuryAccount, treasury.PublicKey},
	} {
		if !bytes.Equal(check.actual, check.expected) {
			return errors.Errorf(
				"%s %s is not derived by program %s",
				check.name,
				base58.Encode(check.actual),
				base58.Encode(ah.Program),
			)
		}
	}
	return nil
}

func decodeKey(name, value string) (ed25519.PublicKey, error) {
	if len(value) == 0 {
		return nil, errors.Errorf("%s is required", name)
	}

	key, err := solana.PublicKeyFromString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return key, nil
}
