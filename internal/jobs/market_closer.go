package jobs

import (
	"context"
	"log"
	"time"

	"betmarket/internal/events"
	"betmarket/internal/models"

	"gorm.io/gorm"
)

// MarketCloserJob periodically announces bets whose betting window has
// ended. It never mutates bet rows — endTime itself is what gates stake
// acceptance — it only notifies downstream consumers.
type MarketCloserJob struct {
	db        *gorm.DB
	publisher *events.Publisher // optional
	lastSweep time.Time
}

func NewMarketCloserJob(db *gorm.DB, publisher *events.Publisher) *MarketCloserJob {
	return &MarketCloserJob{
		db:        db,
		publisher: publisher,
		lastSweep: time.Now(),
	}
}

// Start begins the periodic close sweep
func (j *MarketCloserJob) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := j.sweep(context.Background()); err != nil {
				log.Printf("Market close sweep error: %v", err)
			}
		}
	}()
}

func (j *MarketCloserJob) sweep(ctx context.Context) error {
	now := time.Now()

	var closed []models.Bet
	err := j.db.WithContext(ctx).
		Where("end_time > ? AND end_time <= ?", j.lastSweep, now).
		Find(&closed).Error
	if err != nil {
		return err
	}
	j.lastSweep = now

	for _, bet := range closed {
		log.Printf("Betting window closed for bet %s (%s)", bet.ID, bet.Title)

		if j.publisher != nil {
			event := events.MarketClosed{
				BetID: bet.ID.String(),
				Title: bet.Title,
			}
			if err := j.publisher.PublishMarketClosed(ctx, event); err != nil {
				log.Printf("Warning: failed to publish market closed for bet %s: %v", bet.ID, err)
			}
		}
	}

	return nil
}
