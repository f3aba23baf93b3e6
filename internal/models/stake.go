package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlacedStake is a bettor's accepted stake on one option. Odds is the price
// locked in at placement, independent of any later repricing. The composite
// primary key enforces at most one stake per (user, option).
type PlacedStake struct {
	UserID    uint            `gorm:"primaryKey" json:"user_id"`
	OptionID  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"option_id"`
	BetID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"bet_id"`
	Staked    int64           `gorm:"not null" json:"staked"`
	Odds      decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"odds"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for PlacedStake model
func (PlacedStake) TableName() string {
	return "placed_stakes"
}

// PlaceStakeRequest represents the request to stake credits on an option.
// ExpectedOdds is the price the bettor saw; the stake is rejected if it no
// longer matches the option's current odds.
type PlaceStakeRequest struct {
	OptionID     string  `json:"option_id" binding:"required,uuid"`
	ExpectedOdds float64 `json:"expected_odds" binding:"required"`
	Credits      int64   `json:"credits" binding:"required,min=1"`
}
