package models

import (
	"time"
)

// Credit transaction types
const (
	TxTypeInitialGrant = "initial_grant"
	TxTypeStakePlaced  = "stake_placed"
)

// CreditTransaction represents a credit ledger entry
type CreditTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type        string    `gorm:"size:50;not null;index" json:"type"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for CreditTransaction model
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
