package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pablozamit/elo-pool/internal/api/handlers"
	"github.com/pablozamit/elo-pool/internal/api/middleware"
	"github.com/pablozamit/elo-pool/internal/config"
	"github.com/pablozamit/elo-pool/internal/repository"
	"github.com/pablozamit/elo-pool/internal/service"
	"github.com/pablozamit/elo-pool/internal/websocket"
	"github.com/pablozamit/elo-pool/pkg/database"
	"github.com/pablozamit/elo-pool/pkg/distributed"
	jwtutil "github.com/pablozamit/elo-pool/pkg/jwt"
	"github.com/pablozamit/elo-pool/pkg/logger"
	"github.com/pablozamit/elo-pool/pkg/ratelimit"

	"github.com/itbasis/go-clock"
)

// SetupRouter wires repositories, services and handlers onto a gin engine.
func SetupRouter(cfg *config.Config, db *database.DB) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	jwtManager := jwtutil.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	clk := clock.New()

	playerRepo := repository.NewPlayerRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	eloService := service.NewELOService()
	playerService := service.NewPlayerService(playerRepo, clk)
	matchService := service.NewMatchService(playerRepo, matchRepo, eloService, clk)
	rankingService := service.NewRankingService(playerRepo, matchRepo, clk, cfg.RankingWindow)

	wsHub := websocket.NewHub()
	go wsHub.Run()
	matchService.SetNotifier(wsHub)

	// Redis is optional. When configured it adds a per-match lock around
	// confirmation and a rate limiter shared across instances.
	var redisLimiter *ratelimit.RedisRateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid Redis URL", "error", err)
		}
		redisClient := redis.NewClient(opts)
		matchService.SetLockManager(distributed.NewRedisLockManager(redisClient))
		redisLimiter = ratelimit.NewRedisRateLimiter(redisClient, "elo-pool:ratelimit:")
		logger.Info("Redis connected", "lock", true, "ratelimit", true)
	}

	authHandler := handlers.NewAuthHandler(playerService, jwtManager)
	playerHandler := handlers.NewPlayerHandler(playerService)
	profileHandler := handlers.NewProfileHandler(playerService, matchService, rankingService)
	matchHandler := handlers.NewMatchHandler(matchService, playerService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	authLimit := middleware.RateLimit(middleware.AuthRateLimiter(), middleware.IPKeyFunc("auth"))
	submitLimit := middleware.RateLimit(middleware.SubmitRateLimiter(), middleware.PlayerKeyFunc("submit"))
	if redisLimiter != nil {
		authLimit = middleware.RedisRateLimit(redisLimiter, middleware.IPKeyFunc("auth"), 10, time.Minute)
		submitLimit = middleware.RedisRateLimit(redisLimiter, middleware.PlayerKeyFunc("submit"), 30, time.Minute)
	}

	router.GET("/health", handlers.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(authLimit)
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}

		v1.GET("/rankings", rankingHandler.List)

		matches := v1.Group("/matches")
		matches.Use(middleware.Auth(jwtManager))
		{
			matches.POST("", submitLimit, matchHandler.Submit)
			matches.GET("/pending", matchHandler.Pending)
			matches.GET("/history", matchHandler.History)
			matches.GET("/:id", matchHandler.Get)
			matches.POST("/:id/confirm", matchHandler.Confirm)
			matches.POST("/:id/reject", matchHandler.Reject)
		}

		players := v1.Group("/players")
		players.Use(middleware.Auth(jwtManager))
		{
			players.GET("/me", playerHandler.Me)
			players.GET("/search", playerHandler.Search)
			players.GET("/:id", profileHandler.Profile)
			players.GET("/:id/stats", profileHandler.Stats)
			players.GET("/:id/matches", profileHandler.Matches)
			players.GET("/:id/ranking", profileHandler.RankingInfo)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(jwtManager), middleware.AdminOnly())
		{
			admin.GET("/players", playerHandler.AdminList)
			admin.POST("/players", playerHandler.AdminCreate)
			admin.PUT("/players/:id", playerHandler.AdminUpdate)
			admin.DELETE("/players/:id", playerHandler.AdminDeactivate)
		}

		v1.GET("/ws", middleware.Auth(jwtManager), wsHandler.HandleWebSocket)
	}

	return router
}
