package cache

import (
	"context"
	"encoding/json"
	"time"

	"betmarket/internal/models"

	"github.com/redis/go-redis/v9"
)

const oddsChannel = "odds_updates"

// OddsCache keeps the latest odds snapshot per bet in Redis and announces
// every repricing on a pub/sub channel. It is a read-side convenience; the
// database rows stay authoritative.
type OddsCache struct {
	r   *redis.Client
	ttl time.Duration
}

func New(r *redis.Client, ttl time.Duration) *OddsCache {
	return &OddsCache{r: r, ttl: ttl}
}

func keyBet(betID string) string { return "odds:bet:" + betID }

// OptionOdds is one option's quote inside a snapshot
type OptionOdds struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
	Status   string `json:"status"`
	Odds     string `json:"odds"`
}

// Snapshot is the cached odds state of one bet
type Snapshot struct {
	BetID    string       `json:"bet_id"`
	Options  []OptionOdds `json:"options"`
	TsUnixMs int64        `json:"ts_unix_ms"`
}

// Get loads the cached snapshot for a bet; found is false on a miss.
func (c *OddsCache) Get(ctx context.Context, betID string) (*Snapshot, bool, error) {
	b, err := c.r.Get(ctx, keyBet(betID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

// Refresh stores the current odds of a bet and publishes the snapshot.
func (c *OddsCache) Refresh(ctx context.Context, betID string, options []models.BetOption) error {
	snap := Snapshot{
		BetID:    betID,
		Options:  make([]OptionOdds, 0, len(options)),
		TsUnixMs: time.Now().UnixMilli(),
	}
	for _, opt := range options {
		snap.Options = append(snap.Options, OptionOdds{
			OptionID: opt.OptionID.String(),
			Label:    opt.Label,
			Status:   opt.Status,
			Odds:     opt.CurrentOdds.StringFixed(2),
		})
	}

	b, _ := json.Marshal(snap)
	if err := c.r.Set(ctx, keyBet(betID), b, c.ttl).Err(); err != nil {
		return err
	}
	return c.r.Publish(ctx, oddsChannel, b).Err()
}

// Invalidate drops a bet's cached snapshot
func (c *OddsCache) Invalidate(ctx context.Context, betID string) error {
	return c.r.Del(ctx, keyBet(betID)).Err()
}
