package handlers

import (
	"errors"
	"net/http"

	"betmarket/internal/auth"
	"betmarket/internal/models"
	"betmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type StakeHandler struct {
	stakeService *services.StakeService
}

func NewStakeHandler(stakeService *services.StakeService) *StakeHandler {
	return &StakeHandler{stakeService: stakeService}
}

// PlaceStake stakes credits on an option at the quoted odds
// POST /api/stakes
func (h *StakeHandler) PlaceStake(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.PlaceStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stake, err := h.stakeService.PlaceStake(c.Request.Context(), userID, &req)
	if err != nil {
		status := stakeErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, stake)
}

// GetStakes lists the caller's stakes with their locked odds
// GET /api/stakes
func (h *StakeHandler) GetStakes(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	stakes, err := h.stakeService.GetUserStakes(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stakes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stakes": stakes,
		"total":  len(stakes),
	})
}

// stakeErrorStatus maps stake placement failures to HTTP statuses. Conflict
// style rejections carry 409 so clients re-quote; a storage conflict is 503
// because retrying the identical request can succeed.
func stakeErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrOptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMarketClosed),
		errors.Is(err, services.ErrOddsChanged),
		errors.Is(err, services.ErrBettingEnded),
		errors.Is(err, services.ErrDuplicateStake):
		return http.StatusConflict
	case errors.Is(err, services.ErrInsufficientCredits):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStorageConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
