package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"betmarket/internal/auth"
	"betmarket/internal/models"
	"betmarket/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BetHandler struct {
	betService *services.BetService
}

func NewBetHandler(betService *services.BetService) *BetHandler {
	return &BetHandler{betService: betService}
}

// CreateBet creates a new bet with its options
// POST /api/bets
func (h *BetHandler) CreateBet(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.CreateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.CreateBet(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, bet)
}

// GetBets lists bets still accepting stakes
// GET /api/bets
func (h *BetHandler) GetBets(c *gin.Context) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	bets, err := h.betService.GetOpenBets(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":  bets,
		"total": len(bets),
	})
}

// GetBetByID returns one bet with its options and current odds
// GET /api/bets/:id
func (h *BetHandler) GetBetByID(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	bet, err := h.betService.GetBet(c.Request.Context(), betID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bet not found"})
		return
	}

	c.JSON(http.StatusOK, bet)
}

// GetBetExposure returns the house's per-option exposure, creator only
// GET /api/bets/:id/exposure
func (h *BetHandler) GetBetExposure(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	exposure, err := h.betService.GetBetExposure(c.Request.Context(), userID, betID)
	if err != nil {
		if errors.Is(err, services.ErrNotBetCreator) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "bet not found"})
		return
	}

	out := make(map[string]string, len(exposure))
	for optionID, exp := range exposure {
		out[optionID.String()] = exp.StringFixed(2)
	}

	c.JSON(http.StatusOK, gin.H{
		"bet_id":   betID,
		"exposure": out,
	})
}
