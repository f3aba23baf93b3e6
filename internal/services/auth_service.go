package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"betmarket/internal/models"
)

// AuthService handles authentication business logic
type AuthService struct {
	db             *gorm.DB
	initialCredits int64
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, initialCredits int64) *AuthService {
	return &AuthService{db: db, initialCredits: initialCredits}
}

// ProcessLogin finds or creates a user by email. New users are granted the
// configured starting credit balance, recorded in the ledger.
func (s *AuthService) ProcessLogin(email, name string) (*models.User, error) {
	var user models.User

	result := s.db.Where("email = ?", email).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		// New user — create account with starting credits
		user = models.User{
			Email:   email,
			Name:    name,
			Credits: s.initialCredits,
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		grant := models.CreditTransaction{
			UserID:      user.ID,
			Type:        models.TxTypeInitialGrant,
			Amount:      s.initialCredits,
			Description: "starting credit balance",
		}
		if err := s.db.Create(&grant).Error; err != nil {
			log.Printf("Warning: failed to record initial grant for user %d: %v", user.ID, err)
		}

		log.Printf("New user created: email=%s (ID: %d)", email, user.ID)
	} else if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	} else {
		log.Printf("User logged in: email=%s (ID: %d)", email, user.ID)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
