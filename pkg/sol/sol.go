// Package sol converts between SOL denominated amounts and lamports.
package sol

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Decimals is the number of decimal places between SOL and lamports.
const Decimals = 9

var (
	ErrInvalidAmount = errors.New("invalid sol amount")

	maxLamports = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)
)

// ToLamports converts a SOL amount to lamports, rounding half away from zero
// to the nearest lamport.
func ToLamports(amount float64) (uint64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, errors.Wrapf(ErrInvalidAmount, "%v", amount)
	}

	lamports := decimal.NewFromFloat(amount).Shift(Decimals).Round(0)
	if lamports.GreaterThan(maxLamports) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%v overflows lamports", amount)
	}

	return lamports.BigInt().Uint64(), nil
}

// FromLamports converts lamports to a SOL amount.
func FromLamports(lamports uint64) float64 {
	amount, _ := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -Decimals).Float64()
	return amount
}

// ParseLamports parses a base-10 lamport amount, as reported by the
// indexing API.
func ParseLamports(value string) (uint64, error) {
	lamports, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", value)
	}
	if lamports.IsNegative() || !lamports.Equal(lamports.Truncate(0)) || lamports.GreaterThan(maxLamports) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", value)
	}
	return lamports.BigInt().Uint64(), nil
}
