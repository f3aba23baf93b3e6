package services

import (
	"testing"

	"betmarket/internal/models"
)

func TestProcessLoginCreatesUserWithStartingCredits(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, 1000)

	user, err := service.ProcessLogin("new@example.com", "New User")
	if err != nil {
		t.Fatalf("ProcessLogin failed: %v", err)
	}
	if user.Credits != 1000 {
		t.Errorf("expected 1000 starting credits, got %d", user.Credits)
	}

	var grant models.CreditTransaction
	err = db.Where("user_id = ? AND type = ?", user.ID, models.TxTypeInitialGrant).First(&grant).Error
	if err != nil {
		t.Fatalf("failed to get grant ledger entry: %v", err)
	}
	if grant.Amount != 1000 {
		t.Errorf("expected grant of 1000, got %d", grant.Amount)
	}

	// Second login finds the same account without touching the balance
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("credits", 250)

	again, err := service.ProcessLogin("new@example.com", "New User")
	if err != nil {
		t.Fatalf("second ProcessLogin failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same user, got %d and %d", user.ID, again.ID)
	}
	if again.Credits != 250 {
		t.Errorf("expected untouched balance 250, got %d", again.Credits)
	}
}
