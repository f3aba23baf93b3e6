package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"betmarket/internal/models"

	"github.com/shopspring/decimal"
)

func validCreateRequest() *models.CreateBetRequest {
	return &models.CreateBetRequest{
		Title:          "Title fight",
		Description:    "Who takes the belt",
		EndTime:        time.Now().Add(24 * time.Hour),
		ExpirationTime: time.Now().Add(48 * time.Hour),
		Fee:            0.05,
		LossCap:        100,
		Options: []models.CreateBetOption{
			{Label: "Challenger", InitialOdds: 2.50},
			{Label: "Champion", InitialOdds: 1.60},
		},
	}
}

func TestCreateBet(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db)

	creator := models.User{Email: "creator2@example.com", Name: "Creator", Credits: 1000}
	if err := db.Create(&creator).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	bet, err := service.CreateBet(context.Background(), creator.ID, validCreateRequest())
	if err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}

	if len(bet.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(bet.Options))
	}
	if !bet.Options[0].CurrentOdds.Equal(decimal.NewFromFloat(2.50)) {
		t.Errorf("expected initial odds 2.50 as given, got %s", bet.Options[0].CurrentOdds)
	}
	if bet.Options[0].Status != models.OptionStatusOpen {
		t.Errorf("expected open option, got %s", bet.Options[0].Status)
	}

	loaded, err := service.GetBet(context.Background(), bet.ID)
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if len(loaded.Options) != 2 {
		t.Errorf("expected persisted options, got %d", len(loaded.Options))
	}
}

func TestCreateBetValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db)

	creator := models.User{Email: "creator3@example.com", Name: "Creator", Credits: 1000}
	if err := db.Create(&creator).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*models.CreateBetRequest)
	}{
		{"single option", func(r *models.CreateBetRequest) {
			r.Options = r.Options[:1]
		}},
		{"duplicate labels", func(r *models.CreateBetRequest) {
			r.Options[1].Label = r.Options[0].Label
		}},
		{"end time in the past", func(r *models.CreateBetRequest) {
			r.EndTime = time.Now().Add(-time.Hour)
		}},
		{"expiration before end", func(r *models.CreateBetRequest) {
			r.ExpirationTime = r.EndTime.Add(-time.Hour)
		}},
	}

	for _, tc := range cases {
		req := validCreateRequest()
		tc.mutate(req)
		if _, err := service.CreateBet(context.Background(), creator.ID, req); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestCreateBetRejectsNonPositiveLossCap(t *testing.T) {
	db := setupTestDB(t)
	service := NewBetService(db)

	creator := models.User{Email: "creator4@example.com", Name: "Creator", Credits: 1000}
	if err := db.Create(&creator).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	req := validCreateRequest()
	req.LossCap = 0

	_, err := service.CreateBet(context.Background(), creator.ID, req)
	if !errors.Is(err, ErrInvalidLossCap) {
		t.Fatalf("expected ErrInvalidLossCap, got %v", err)
	}
}

func TestGetBetExposureCreatorOnly(t *testing.T) {
	db := setupTestDB(t)
	user, bet, optionA, optionB := seedMarket(t, db)

	service := NewBetService(db)

	// The seeded bettor is not the creator
	_, err := service.GetBetExposure(context.Background(), user.ID, bet.ID)
	if !errors.Is(err, ErrNotBetCreator) {
		t.Fatalf("expected ErrNotBetCreator, got %v", err)
	}

	stake := models.PlacedStake{
		UserID:   user.ID,
		OptionID: optionA.OptionID,
		BetID:    bet.ID,
		Staked:   50,
		Odds:     decimal.NewFromFloat(2.00),
	}
	if err := db.Create(&stake).Error; err != nil {
		t.Fatalf("failed to create stake: %v", err)
	}

	exposure, err := service.GetBetExposure(context.Background(), bet.CreatedBy, bet.ID)
	if err != nil {
		t.Fatalf("GetBetExposure failed: %v", err)
	}
	if !exposure[optionA.OptionID].Equal(decimal.NewFromInt(50)) {
		t.Errorf("option A: expected exposure 50, got %s", exposure[optionA.OptionID])
	}
	if !exposure[optionB.OptionID].Equal(decimal.Zero) {
		t.Errorf("option B: expected exposure 0, got %s", exposure[optionB.OptionID])
	}
}
