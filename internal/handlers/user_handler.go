package handlers

import (
	"net/http"

	"betmarket/internal/auth"
	"betmarket/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetProfile returns the caller's profile including the credit balance
// GET /api/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetLedger returns the caller's credit transactions, newest first
// GET /api/user/ledger
func (h *UserHandler) GetLedger(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var entries []models.CreditTransaction
	err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"total":        len(entries),
	})
}
