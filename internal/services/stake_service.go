package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"betmarket/internal/cache"
	"betmarket/internal/events"
	"betmarket/internal/models"
	"betmarket/internal/monitoring"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StakeService handles stake placement and the odds update that goes with it
type StakeService struct {
	db        *gorm.DB
	oddsCache *cache.OddsCache  // optional
	publisher *events.Publisher // optional
}

// NewStakeService creates a new StakeService. oddsCache and publisher may be
// nil when Redis/Kafka are not configured.
func NewStakeService(db *gorm.DB, oddsCache *cache.OddsCache, publisher *events.Publisher) *StakeService {
	return &StakeService{
		db:        db,
		oddsCache: oddsCache,
		publisher: publisher,
	}
}

// PlaceStake validates and records a stake, then reprices every option of
// the parent bet, all inside one transaction. Validation failures abort
// before any write; any later failure rolls the whole transaction back, so
// balance, stakes and odds are never partially updated.
func (s *StakeService) PlaceStake(ctx context.Context, userID uint, req *models.PlaceStakeRequest) (*models.PlacedStake, error) {
	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		return nil, ErrOptionNotFound
	}

	expected := decimal.NewFromFloat(req.ExpectedOdds).Round(2)

	started := time.Now()
	var stake models.PlacedStake
	var bet models.Bet

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var option models.BetOption
		if err := tx.First(&option, "option_id = ?", optionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOptionNotFound
			}
			return err
		}

		if option.Status != models.OptionStatusOpen {
			return ErrMarketClosed
		}

		// The bettor is guaranteed the price they saw, so a stale quote is
		// rejected rather than silently filled at the new odds.
		if !option.CurrentOdds.Equal(expected) {
			return ErrOddsChanged
		}

		if err := tx.First(&bet, "id = ?", option.BetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBettingEnded
			}
			return err
		}

		if !time.Now().Before(bet.EndTime) {
			return ErrBettingEnded
		}

		var prior int64
		err := tx.Model(&models.PlacedStake{}).
			Where("user_id = ? AND option_id = ?", userID, optionID).
			Count(&prior).Error
		if err != nil {
			return err
		}
		if prior > 0 {
			return ErrDuplicateStake
		}

		// Balance is read under a row lock so two concurrent stakes cannot
		// both observe sufficient credits and overdraw.
		var user models.User
		if err := s.lockingRead(tx).First(&user, userID).Error; err != nil {
			return err
		}

		if user.Credits < req.Credits {
			return ErrInsufficientCredits
		}

		err = tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("credits", user.Credits-req.Credits).Error
		if err != nil {
			return fmt.Errorf("failed to debit credits: %w", err)
		}

		ledger := models.CreditTransaction{
			UserID:      userID,
			Type:        models.TxTypeStakePlaced,
			Amount:      -req.Credits,
			Description: fmt.Sprintf("stake on option %s (%s)", option.Label, optionID),
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return fmt.Errorf("failed to record ledger entry: %w", err)
		}

		stake = models.PlacedStake{
			UserID:   userID,
			OptionID: optionID,
			BetID:    bet.ID,
			Staked:   req.Credits,
			Odds:     option.CurrentOdds,
		}
		if err := tx.Create(&stake).Error; err != nil {
			return fmt.Errorf("failed to record stake: %w", err)
		}

		return RepriceBet(tx, &bet)
	}, s.txOptions()...)

	if err != nil {
		err = classifyStorageError(err)
		monitoring.StakeRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	monitoring.StakesPlaced.Inc()
	monitoring.StakeDuration.Observe(time.Since(started).Seconds())

	s.announce(ctx, &stake, &bet)

	return &stake, nil
}

// GetUserStakes retrieves all stakes placed by a user
func (s *StakeService) GetUserStakes(ctx context.Context, userID uint) ([]models.PlacedStake, error) {
	var stakes []models.PlacedStake
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&stakes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stakes: %w", err)
	}
	return stakes, nil
}

// txOptions returns the transaction options for the stake transaction.
// Postgres needs serializable isolation so concurrent stakes on sibling
// options cannot both reprice from a pre-update snapshot. SQLite (tests)
// is serializable by default and its driver rejects explicit levels.
func (s *StakeService) txOptions() []*sql.TxOptions {
	if s.db.Name() == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
	}
	return nil
}

// lockingRead returns a query with SELECT ... FOR UPDATE semantics where the
// store supports row locks. SQLite takes a whole-database write lock instead.
func (s *StakeService) lockingRead(tx *gorm.DB) *gorm.DB {
	if s.db.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// announce refreshes the cached odds snapshot and emits a stake-placed
// event after commit. Both are best effort; the stake already stands.
func (s *StakeService) announce(ctx context.Context, stake *models.PlacedStake, bet *models.Bet) {
	if s.oddsCache != nil {
		var options []models.BetOption
		if err := s.db.WithContext(ctx).Where("bet_id = ?", bet.ID).Find(&options).Error; err != nil {
			log.Printf("Warning: failed to load options for odds cache: %v", err)
		} else if err := s.oddsCache.Refresh(ctx, bet.ID.String(), options); err != nil {
			log.Printf("Warning: failed to refresh odds cache for bet %s: %v", bet.ID, err)
		}
	}

	if s.publisher != nil {
		event := events.StakePlaced{
			BetID:    bet.ID.String(),
			OptionID: stake.OptionID.String(),
			UserID:   stake.UserID,
			Staked:   stake.Staked,
			Odds:     stake.Odds.String(),
		}
		if err := s.publisher.PublishStakePlaced(ctx, event); err != nil {
			log.Printf("Warning: failed to publish stake event: %v", err)
		}
	}
}

// classifyStorageError maps driver-level failures onto the service's error
// kinds: serialization failures, deadlocks and lock timeouts become the
// retryable ErrStorageConflict; a unique violation on the stake primary key
// means a concurrent duplicate slipped past the pre-check.
func classifyStorageError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %v", ErrStorageConflict, err)
		case "23505":
			return ErrDuplicateStake
		}
	}
	return err
}

// rejectionReason labels a failed placement for metrics
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrOptionNotFound):
		return "option_not_found"
	case errors.Is(err, ErrMarketClosed):
		return "market_closed"
	case errors.Is(err, ErrOddsChanged):
		return "odds_changed"
	case errors.Is(err, ErrBettingEnded):
		return "betting_ended"
	case errors.Is(err, ErrDuplicateStake):
		return "duplicate_stake"
	case errors.Is(err, ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, ErrStorageConflict):
		return "storage_conflict"
	default:
		return "internal"
	}
}
