package marketplace

import (
	"github.com/pkg/errors"
)

var (
	// ErrRewardCenterNotFound is returned when the configured auction house
	// has no reward center. No network call is made in that case.
	ErrRewardCenterNotFound = errors.New("reward center data not found")

	// ErrMetadataNotFound is returned when the mint has no token metadata
	// account.
	ErrMetadataNotFound = errors.New("metadata not found")

	ErrInvalidPrice = errors.New("invalid price")

	// ErrProgramNotResolved is returned when the auction house program was
	// neither configured nor read from the chain.
	ErrProgramNotResolved = errors.New("auction house program not resolved")
)
