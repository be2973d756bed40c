package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmhub/campaign-manager-api/internal/config"
	"github.com/dmhub/campaign-manager-api/internal/database"
	"github.com/dmhub/campaign-manager-api/internal/handlers"
	"github.com/dmhub/campaign-manager-api/internal/logger"
	"github.com/dmhub/campaign-manager-api/internal/middleware"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/services"
	"github.com/dmhub/campaign-manager-api/internal/sheet"
	"github.com/dmhub/campaign-manager-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		zl.Fatal("Failed to create indexes", zap.Error(err))
	}

	assets, err := storage.NewLocalAssetStore(cfg.AssetDir, "/assets")
	if err != nil {
		zl.Fatal("Failed to initialize asset store", zap.Error(err))
	}

	// Repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)

	authService := services.NewAuthService(userRepo)
	linkService := services.NewLinkService(characterRepo, campaignRepo, assets, zl)
	characterService := services.NewCharacterService(characterRepo, campaignRepo, assets, linkService, zl)
	campaignService := services.NewCampaignService(campaignRepo, characterRepo, linkService, zl)

	exporter := sheet.NewExporter(sheet.NewLoader(cfg.TemplateDirs, ""), zl)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		zl.Fatal("Failed to create Redis store", zap.Error(err))
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("campaign_session", store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	characterHandler := handlers.NewCharacterHandler(characterService, authService, linkService, exporter)
	campaignHandler := handlers.NewCampaignHandler(campaignService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Campaign Manager API is running",
		})
	})

	// Uploaded portraits
	r.Static("/assets", cfg.AssetDir)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Character routes (protected)
		characters := api.Group("/characters")
		characters.Use(middleware.RequireAuth())
		{
			characters.GET("", characterHandler.List)
			characters.POST("", characterHandler.Create)
			characters.GET("/:id", characterHandler.Get)
			characters.PUT("/:id", characterHandler.Update)
			characters.DELETE("/:id", characterHandler.Delete)
			characters.POST("/:id/links", characterHandler.Link)
			characters.DELETE("/:id/links/:campaignId", characterHandler.Unlink)
			characters.GET("/:id/sheet", characterHandler.ExportSheet)
			characters.POST("/:id/portrait", characterHandler.UploadPortrait)
		}

		// Campaign routes (protected)
		campaigns := api.Group("/campaigns")
		campaigns.Use(middleware.RequireAuth())
		{
			campaigns.GET("", campaignHandler.List)
			campaigns.POST("", campaignHandler.Create)
			campaigns.GET("/:id", campaignHandler.Get)
			campaigns.PUT("/:id", campaignHandler.Update)
			campaigns.DELETE("/:id", campaignHandler.Delete)
			campaigns.DELETE("/:id/players/:characterId", campaignHandler.RemovePlayer)
		}
	}

	// Start server
	zl.Info("Server starting", zap.String("addr", ":8080"))
	if err := r.Run(":8080"); err != nil {
		zl.Fatal("Failed to start server", zap.Error(err))
	}
}
