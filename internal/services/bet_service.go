package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"betmarket/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNotBetCreator guards the exposure report, which reveals the house book
var ErrNotBetCreator = errors.New("only the bet creator can view exposure")

// BetService handles bet creation and reads
type BetService struct {
	db *gorm.DB
}

// NewBetService creates a new BetService
func NewBetService(db *gorm.DB) *BetService {
	return &BetService{db: db}
}

// CreateBet creates a bet with its options. Initial odds are accepted as
// given input. Single-option bets are rejected here so the repricer never
// sees a market with no competitive meaning, and a non-positive loss cap is
// rejected so repricing can never divide by zero.
func (s *BetService) CreateBet(ctx context.Context, creatorID uint, req *models.CreateBetRequest) (*models.Bet, error) {
	now := time.Now()

	if req.LossCap <= 0 {
		return nil, ErrInvalidLossCap
	}
	if len(req.Options) < 2 {
		return nil, errors.New("a bet needs at least 2 options")
	}
	if !req.EndTime.After(now) {
		return nil, errors.New("end time must be in the future")
	}
	if req.ExpirationTime.Before(req.EndTime) {
		return nil, errors.New("expiration time must not be before end time")
	}

	labels := make(map[string]struct{}, len(req.Options))
	for _, opt := range req.Options {
		if _, dup := labels[opt.Label]; dup {
			return nil, fmt.Errorf("duplicate option label: %s", opt.Label)
		}
		labels[opt.Label] = struct{}{}
	}

	bet := models.Bet{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		EndTime:        req.EndTime,
		ExpirationTime: req.ExpirationTime,
		CreatedBy:      creatorID,
		Fee:            decimal.NewFromFloat(req.Fee).Round(2),
		LossCap:        req.LossCap,
	}

	options := make([]models.BetOption, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, models.BetOption{
			OptionID:    uuid.New(),
			BetID:       bet.ID,
			Label:       opt.Label,
			Status:      models.OptionStatusOpen,
			CurrentOdds: decimal.NewFromFloat(opt.InitialOdds).Round(2),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bet).Error; err != nil {
			return fmt.Errorf("failed to create bet: %w", err)
		}
		if err := tx.Create(&options).Error; err != nil {
			return fmt.Errorf("failed to create options: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bet.Options = options
	return &bet, nil
}

// GetBet retrieves a bet with its options and current odds
func (s *BetService) GetBet(ctx context.Context, betID uuid.UUID) (*models.Bet, error) {
	var bet models.Bet
	err := s.db.WithContext(ctx).Preload("Options").First(&bet, "id = ?", betID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bet not found")
		}
		return nil, err
	}
	return &bet, nil
}

// GetOpenBets retrieves bets still accepting stakes, newest first
func (s *BetService) GetOpenBets(ctx context.Context, limit, offset int) ([]models.Bet, error) {
	var bets []models.Bet
	err := s.db.WithContext(ctx).
		Preload("Options").
		Where("end_time > ?", time.Now()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}
	return bets, nil
}

// GetBetExposure returns the house's per-option exposure for a bet. Only
// the creator, who carries the loss cap, may see it.
func (s *BetService) GetBetExposure(ctx context.Context, callerID uint, betID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var bet models.Bet
	if err := s.db.WithContext(ctx).First(&bet, "id = ?", betID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bet not found")
		}
		return nil, err
	}

	if bet.CreatedBy != callerID {
		return nil, ErrNotBetCreator
	}

	return CalculateExposure(s.db.WithContext(ctx), betID)
}
