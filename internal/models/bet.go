package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Option status values. Transitions away from "open" belong to settlement,
// which never happens inside a stake-placement transaction.
const (
	OptionStatusOpen = "open"
	OptionStatusWon  = "won"
	OptionStatusLost = "lost"
)

// Bet represents a proposition bet with mutually exclusive outcomes.
// Everything except the options' current odds is immutable after creation.
type Bet struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string          `gorm:"size:32;not null" json:"title"`
	Description    string          `gorm:"size:255;not null" json:"description"`
	EndTime        time.Time       `gorm:"not null;index" json:"end_time"`
	ExpirationTime time.Time       `gorm:"not null" json:"expiration_time"`
	CreatedBy      uint            `gorm:"not null;index" json:"created_by"`
	Creator        *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Fee            decimal.Decimal `gorm:"type:decimal(3,2);not null" json:"fee"`
	LossCap        int64           `gorm:"not null" json:"loss_cap"`
	Options        []BetOption     `gorm:"foreignKey:BetID" json:"options,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName specifies the table name for Bet model
func (Bet) TableName() string {
	return "bets"
}

// BetOption is one outcome of a bet. CurrentOdds is the price the next
// stake on this option would be accepted at, rewritten on every repricing.
type BetOption struct {
	OptionID    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"option_id"`
	BetID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"bet_id"`
	Label       string          `gorm:"size:32;not null" json:"label"`
	Status      string          `gorm:"size:16;not null;default:open" json:"status"`
	CurrentOdds decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"current_odds"`
}

// TableName specifies the table name for BetOption model
func (BetOption) TableName() string {
	return "bet_options"
}

// CreateBetOption is one outcome in a bet-creation request. Initial odds
// are accepted as given, not derived.
type CreateBetOption struct {
	Label       string  `json:"label" binding:"required,min=1,max=32"`
	InitialOdds float64 `json:"initial_odds" binding:"required,min=1.01,max=99.99"`
}

// CreateBetRequest represents the request to create a new bet
type CreateBetRequest struct {
	Title          string            `json:"title" binding:"required,min=2,max=32"`
	Description    string            `json:"description" binding:"required,min=2,max=255"`
	EndTime        time.Time         `json:"end_time" binding:"required"`
	ExpirationTime time.Time         `json:"expiration_time" binding:"required"`
	Fee            float64           `json:"fee" binding:"min=0,max=0.25"`
	LossCap        int64             `json:"loss_cap" binding:"required,min=1"`
	Options        []CreateBetOption `json:"options" binding:"required,min=2,dive"`
}
