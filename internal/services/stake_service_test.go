package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"betmarket/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPlaceStakeHappyPath(t *testing.T) {
	db := setupTestDB(t)
	user, _, optionA, optionB := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	stake, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      50,
	})
	if err != nil {
		t.Fatalf("PlaceStake failed: %v", err)
	}

	if stake.Staked != 50 {
		t.Errorf("expected staked 50, got %d", stake.Staked)
	}
	if !stake.Odds.Equal(decimal.NewFromFloat(2.00)) {
		t.Errorf("expected locked odds 2.00, got %s", stake.Odds)
	}

	// Balance debited
	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if after.Credits != 950 {
		t.Errorf("expected 950 credits, got %d", after.Credits)
	}

	// Ledger entry recorded
	var ledger models.CreditTransaction
	err = db.Where("user_id = ? AND type = ?", user.ID, models.TxTypeStakePlaced).First(&ledger).Error
	if err != nil {
		t.Fatalf("failed to get ledger entry: %v", err)
	}
	if ledger.Amount != -50 {
		t.Errorf("expected ledger amount -50, got %d", ledger.Amount)
	}

	// Every option of the bet repriced in the same transaction
	var a, b models.BetOption
	db.First(&a, "option_id = ?", optionA.OptionID)
	db.First(&b, "option_id = ?", optionB.OptionID)
	if !a.CurrentOdds.Equal(decimal.NewFromFloat(1.16)) {
		t.Errorf("option A: expected odds 1.16, got %s", a.CurrentOdds)
	}
	if !b.CurrentOdds.Equal(decimal.NewFromFloat(5.24)) {
		t.Errorf("option B: expected odds 5.24, got %s", b.CurrentOdds)
	}
}

func TestPlaceStakeStaleQuote(t *testing.T) {
	db := setupTestDB(t)
	user, _, optionA, _ := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	other := models.User{Email: "other@example.com", Name: "Other", Credits: 1000}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create second user: %v", err)
	}

	_, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      50,
	})
	if err != nil {
		t.Fatalf("first stake failed: %v", err)
	}

	// The accepted stake repriced A to 1.16; quoting the old 2.00 must fail
	_, err = service.PlaceStake(context.Background(), other.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      10,
	})
	if !errors.Is(err, ErrOddsChanged) {
		t.Fatalf("expected ErrOddsChanged, got %v", err)
	}

	// Quoting the fresh odds succeeds
	_, err = service.PlaceStake(context.Background(), other.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 1.16,
		Credits:      10,
	})
	if err != nil {
		t.Fatalf("stake at fresh odds failed: %v", err)
	}
}

func TestPlaceStakeDuplicate(t *testing.T) {
	db := setupTestDB(t)
	user, _, optionA, _ := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	_, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      50,
	})
	if err != nil {
		t.Fatalf("first stake failed: %v", err)
	}

	var a models.BetOption
	db.First(&a, "option_id = ?", optionA.OptionID)
	currentOdds, _ := a.CurrentOdds.Float64()

	_, err = service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: currentOdds,
		Credits:      10,
	})
	if !errors.Is(err, ErrDuplicateStake) {
		t.Fatalf("expected ErrDuplicateStake, got %v", err)
	}

	// No second stake and no second debit
	var count int64
	db.Model(&models.PlacedStake{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 stake, got %d", count)
	}
	var after models.User
	db.First(&after, user.ID)
	if after.Credits != 950 {
		t.Errorf("expected 950 credits, got %d", after.Credits)
	}
}

func TestPlaceStakeSecondOptionAllowed(t *testing.T) {
	db := setupTestDB(t)
	user, _, optionA, optionB := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	_, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      50,
	})
	if err != nil {
		t.Fatalf("first stake failed: %v", err)
	}

	var b models.BetOption
	db.First(&b, "option_id = ?", optionB.OptionID)
	currentOdds, _ := b.CurrentOdds.Float64()

	// Different outcome of the same bet is not a duplicate
	_, err = service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionB.OptionID.String(),
		ExpectedOdds: currentOdds,
		Credits:      20,
	})
	if err != nil {
		t.Fatalf("stake on sibling option failed: %v", err)
	}
}

func TestPlaceStakeInsufficientCreditsIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	_, _, optionA, optionB := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	poor := models.User{Email: "poor@example.com", Name: "Poor", Credits: 30}
	if err := db.Create(&poor).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err := service.PlaceStake(context.Background(), poor.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      50,
	})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	// Balance, stake table and odds are untouched
	var after models.User
	db.First(&after, poor.ID)
	if after.Credits != 30 {
		t.Errorf("expected 30 credits, got %d", after.Credits)
	}

	var stakes int64
	db.Model(&models.PlacedStake{}).Count(&stakes)
	if stakes != 0 {
		t.Errorf("expected no stakes, got %d", stakes)
	}

	var a, b models.BetOption
	db.First(&a, "option_id = ?", optionA.OptionID)
	db.First(&b, "option_id = ?", optionB.OptionID)
	if !a.CurrentOdds.Equal(decimal.NewFromFloat(2.00)) || !b.CurrentOdds.Equal(decimal.NewFromFloat(2.00)) {
		t.Errorf("odds changed on failed stake: A=%s B=%s", a.CurrentOdds, b.CurrentOdds)
	}
}

func TestPlaceStakeClosedOption(t *testing.T) {
	db := setupTestDB(t)
	user, _, optionA, _ := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	db.Model(&models.BetOption{}).
		Where("option_id = ?", optionA.OptionID).
		Update("status", models.OptionStatusWon)

	_, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      10,
	})
	if !errors.Is(err, ErrMarketClosed) {
		t.Fatalf("expected ErrMarketClosed, got %v", err)
	}
}

func TestPlaceStakeAfterEndTime(t *testing.T) {
	db := setupTestDB(t)
	user, bet, optionA, _ := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	db.Model(&models.Bet{}).
		Where("id = ?", bet.ID).
		Update("end_time", time.Now().Add(-time.Minute))

	_, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     optionA.OptionID.String(),
		ExpectedOdds: 2.00,
		Credits:      10,
	})
	if !errors.Is(err, ErrBettingEnded) {
		t.Fatalf("expected ErrBettingEnded, got %v", err)
	}
}

func TestPlaceStakeUnknownOption(t *testing.T) {
	db := setupTestDB(t)
	user, _, _, _ := seedMarket(t, db)
	service := NewStakeService(db, nil, nil)

	_, err := service.PlaceStake(context.Background(), user.ID, &models.PlaceStakeRequest{
		OptionID:     uuid.New().String(),
		ExpectedOdds: 2.00,
		Credits:      10,
	})
	if !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}
}
