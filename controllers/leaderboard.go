package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nearbot/services"
)

// LeaderboardController exposes the stored duel standings over HTTP.
type LeaderboardController struct {
	store *services.LeaderboardStore
}

// NewLeaderboardController wires the controller to the shared store.
func NewLeaderboardController(store *services.LeaderboardStore) *LeaderboardController {
	return &LeaderboardController{store: store}
}

// GetLeaderboard returns the ranked board for one guild. The guild path
// parameter accepts the raw guild id or the "global" bucket.
func (lc *LeaderboardController) GetLeaderboard(c *gin.Context) {
	guildKey := c.Param("guild")
	if guildKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guild key required"})
		return
	}

	entries := lc.store.Ranked(guildKey, 0)
	c.JSON(http.StatusOK, gin.H{
		"guild":   guildKey,
		"entries": entries,
	})
}
