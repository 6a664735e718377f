package api

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/asciime/internal/api/handler"
	"github.com/timmy/asciime/internal/api/middleware"
	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/logger"
	"github.com/timmy/asciime/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	gifService *service.GifService,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler(gifService.Sources(), cfg.Cache.Backend)
	gifHandler := handler.NewGifHandler(gifService, cfg.Aggregator.MaxCount, cfg.Aggregator.DefaultCount)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		api.GET("/batch", gifHandler.Batch)
		api.GET("/random", gifHandler.Random)
		api.GET("/categories", gifHandler.Categories)
		api.GET("/sources/:source", gifHandler.BySource)
	}

	// Admin routes only exist when a token is configured
	if cfg.Server.AdminToken != "" {
		adminHandler := handler.NewAdminHandler(gifService, log)
		admin := api.Group("/admin", middleware.AdminAuth(cfg.Server.AdminToken))
		admin.DELETE("/seen/:source", adminHandler.ClearSeen)
	} else {
		log.Info("Admin routes disabled: server.admin_token not set")
	}

	return r
}
