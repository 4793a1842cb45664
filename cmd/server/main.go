package main

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"nearbot/config"
	"nearbot/discord"
	"nearbot/routes"
	"nearbot/services"
	"nearbot/websocket"
)

func main() {
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	llm, err := services.NewGeminiClient(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}

	store := services.NewLeaderboardStore(cfg.Leaderboard.Path)
	memory := services.NewMemory()
	locks := services.NewLockRegistry()

	bot, err := discord.New(cfg, llm, store, memory, locks)
	if err != nil {
		log.Fatalf("Failed to create discord bot: %v", err)
	}
	bot.SetDuelEventSink(websocket.BroadcastDuelEvent)

	if err := bot.Start(ctx); err != nil {
		log.Fatalf("Failed to start discord bot: %v", err)
	}
	defer bot.Stop()
	log.Println("Discord bot connected")

	router := setupRouter(cfg, store)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, store *services.LeaderboardStore) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	origins := cfg.Server.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(router, store)
	return router
}
