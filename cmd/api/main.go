package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hilo-gateway-backend/internal/chain"
	"hilo-gateway-backend/internal/config"
	"hilo-gateway-backend/internal/handlers"
	"hilo-gateway-backend/internal/middleware"
	"hilo-gateway-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	ctx := context.Background()

	chainClient, err := chain.Dial(ctx, cfg.Network, cfg.OperatorKey)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.Network.Label, err)
	}
	defer chainClient.Close()

	if chainClient.ReadOnly() {
		log.Println("No operator key configured: running read-only, write endpoints disabled")
	} else {
		log.Printf("Operator account: %s", chainClient.Operator())
	}

	jwtService := services.NewJWTService(cfg)

	wsHandler := handlers.NewWebSocketHandler()
	gameHandler := handlers.NewGameHandler(chainClient, redisService)
	tokenHandler := handlers.NewTokenHandler(chainClient)
	adminHandler := handlers.NewAdminHandler(chainClient, jwtService, cfg.AdminToken)

	if cfg.AutoSettle && !chainClient.ReadOnly() {
		settler := services.NewSettler(chainClient, redisService, wsHandler, cfg.PollInterval)
		go settler.Start(ctx)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(middleware.RequestID())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"network":   cfg.Network.Key,
			"chain_id":  cfg.Network.ChainID,
			"read_only": chainClient.ReadOnly(),
		}
		if err := redisService.Ping(c.Request.Context()); err != nil {
			status["redis"] = "down"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["redis"] = "ok"
		c.JSON(http.StatusOK, status)
	})

	api := router.Group("/api")
	api.Use(middleware.RateLimit(redisService))
	{
		api.GET("/ws", wsHandler.HandleWebSocket)

		game := api.Group("/game")
		{
			game.GET("/config", gameHandler.GetConfig)
			game.GET("/bets", gameHandler.GetRecentBets)
			game.POST("/bets", gameHandler.PlaceBet)
			game.GET("/bets/:id", gameHandler.GetBet)
			game.POST("/bets/:id/settle", gameHandler.SettleBet)
			game.GET("/bets/:id/readiness", gameHandler.GetReadiness)
			game.POST("/precheck", gameHandler.Precheck)
		}

		api.GET("/token/state", tokenHandler.GetState)
		api.GET("/header/latest", tokenHandler.GetLatestHeader)
		api.GET("/header/:height", tokenHandler.GetHeaderAt)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AdminAuth(jwtService))
			{
				protected.POST("/delay", adminHandler.SetDelay)
				protected.GET("/owner", adminHandler.GetOwner)
			}
		}
	}

	log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.Network.Label)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
