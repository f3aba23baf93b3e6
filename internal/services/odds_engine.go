package services

import (
	"fmt"

	"betmarket/internal/models"
	"betmarket/internal/monitoring"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repricing constants. Every option starts from a 10% baseline probability
// and is pushed up by 0.70 per unit of exposure/lossCap; 0.01 is the floor
// against degenerate inputs.
const (
	baseProbability  = 0.10
	exposureWeight   = 0.70
	probabilityFloor = 0.01
)

// minOdds is the absolute price floor: no option ever pays below 1.01.
var minOdds = decimal.NewFromFloat(1.01)

// CalculateExposure returns, per option of the bet, the house's net payout
// liability if that option wins: sum over its stakes of staked * (odds - 1).
// Options with no stakes map to zero. One query per table, aggregated in
// memory, so the snapshot is consistent within the caller's transaction.
func CalculateExposure(tx *gorm.DB, betID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var options []models.BetOption
	if err := tx.Where("bet_id = ?", betID).Find(&options).Error; err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	var stakes []models.PlacedStake
	if err := tx.Where("bet_id = ?", betID).Find(&stakes).Error; err != nil {
		return nil, fmt.Errorf("failed to load stakes: %w", err)
	}

	exposure := make(map[uuid.UUID]decimal.Decimal, len(options))
	for _, opt := range options {
		exposure[opt.OptionID] = decimal.Zero
	}

	one := decimal.NewFromInt(1)
	for _, stake := range stakes {
		current, ok := exposure[stake.OptionID]
		if !ok {
			continue
		}
		liability := decimal.NewFromInt(stake.Staked).Mul(stake.Odds.Sub(one))
		exposure[stake.OptionID] = current.Add(liability)
	}

	return exposure, nil
}

// targetProbabilities scales each option's exposure against the loss cap
// into a target probability: more exposure means a higher probability and,
// once inverted, a lower payout, deterring further stakes on that option.
func targetProbabilities(exposure map[uuid.UUID]decimal.Decimal, lossCap int64) map[uuid.UUID]float64 {
	capAmount := decimal.NewFromInt(lossCap)
	probabilities := make(map[uuid.UUID]float64, len(exposure))
	for optionID, exp := range exposure {
		factor, _ := exp.Div(capAmount).Float64()
		p := baseProbability + factor*exposureWeight
		if p < probabilityFloor {
			p = probabilityFloor
		}
		probabilities[optionID] = p
	}
	return probabilities
}

// normalizeWithMargin rescales all probabilities uniformly so they sum to
// exactly 1 + fee. The uniform factor preserves the relative risk ordering
// from targetProbabilities while baking in the house margin.
func normalizeWithMargin(probabilities map[uuid.UUID]float64, fee float64) map[uuid.UUID]float64 {
	var sum float64
	for _, p := range probabilities {
		sum += p
	}

	factor := (1 + fee) / sum

	normalized := make(map[uuid.UUID]float64, len(probabilities))
	for optionID, p := range probabilities {
		normalized[optionID] = p * factor
	}
	return normalized
}

// oddsFromProbabilities inverts probabilities into decimal odds, rounded to
// the two-decimal storage precision and clamped to the 1.01 floor. The
// rounded values are what quotes and later exposure runs use.
func oddsFromProbabilities(probabilities map[uuid.UUID]float64) map[uuid.UUID]decimal.Decimal {
	odds := make(map[uuid.UUID]decimal.Decimal, len(probabilities))
	for optionID, p := range probabilities {
		o := decimal.NewFromFloat(1 / p).Round(2)
		if o.LessThan(minOdds) {
			o = minOdds
		}
		odds[optionID] = o
	}
	return odds
}

// RepriceBet recomputes exposure for every option of the bet and rewrites
// all current odds in the caller's transaction (full replace, not a delta).
func RepriceBet(tx *gorm.DB, bet *models.Bet) error {
	if bet.LossCap <= 0 {
		return fmt.Errorf("%w: bet %s has loss cap %d", ErrInvalidLossCap, bet.ID, bet.LossCap)
	}

	exposure, err := CalculateExposure(tx, bet.ID)
	if err != nil {
		return err
	}

	fee, _ := bet.Fee.Float64()
	probabilities := normalizeWithMargin(targetProbabilities(exposure, bet.LossCap), fee)
	newOdds := oddsFromProbabilities(probabilities)

	for optionID, odds := range newOdds {
		err := tx.Model(&models.BetOption{}).
			Where("option_id = ?", optionID).
			Update("current_odds", odds).Error
		if err != nil {
			return fmt.Errorf("failed to update odds for option %s: %w", optionID, err)
		}
	}

	monitoring.Repricings.Inc()
	return nil
}
