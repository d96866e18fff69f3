package adapters

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/clouddice/dice-server/internal/config"
	"github.com/clouddice/dice-server/internal/core"
)

// SetupRouter wires the HTTP surface:
// - static client assets from cfg.StaticPath with index fallback
// - health endpoints under / and /api
// - the WebSocket upgrade at /ws
func SetupRouter(ctx context.Context, cfg *config.Config, room *core.Room, ctl *WSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	started := time.Now()

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"uptime": time.Since(started).Seconds(),
		})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "Cloud Dice Server is running!",
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"connectedUsers": room.UserCount(),
		})
	})

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	// The client is a single-page app; unknown non-API paths get index.html.
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}
