package services

import (
	"errors"
)

// Stake placement outcomes. All of these are expected, caller-recoverable
// conditions; handlers map them to HTTP statuses with errors.Is.
var (
	ErrOptionNotFound      = errors.New("option not found")
	ErrMarketClosed        = errors.New("betting is closed for this option")
	ErrOddsChanged         = errors.New("odds have changed")
	ErrBettingEnded        = errors.New("betting period has ended")
	ErrDuplicateStake      = errors.New("you have already placed a stake on this option")
	ErrInsufficientCredits = errors.New("not enough credits")

	// ErrStorageConflict wraps lock timeouts and serialization failures.
	// The whole operation can be retried; nothing was applied.
	ErrStorageConflict = errors.New("storage conflict, please retry")

	// ErrInvalidLossCap marks a non-positive loss cap. Bet creation rejects
	// it so the repricer never divides by zero.
	ErrInvalidLossCap = errors.New("loss cap must be positive")
)
