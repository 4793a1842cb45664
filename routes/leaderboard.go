package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nearbot/controllers"
	"nearbot/services"
	"nearbot/websocket"
)

// SetupRoutes mounts the read-only HTTP surface: health, per-guild
// leaderboard JSON, and the live duel feed websocket.
func SetupRoutes(router *gin.Engine, store *services.LeaderboardStore) {
	lc := controllers.NewLeaderboardController(store)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"feedClients": websocket.FeedClientCount(),
		})
	})
	router.GET("/leaderboard/:guild", lc.GetLeaderboard)
	router.GET("/ws/duels", websocket.DuelFeedHandler)
}
