package handlers

import (
	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/middleware"

	"github.com/gin-gonic/gin"
)

var appConfig = &config.Config{
	BaseURL:   "http://localhost:8080",
	UploadDir: "./uploads",
}

// Configure hands the server configuration to the handlers and installs the request
// validators. Call once before serving.
func Configure(cfg *config.Config) {
	appConfig = cfg
	setupValidator()
}

// requestLogger tags records with the route and the caller.
func requestLogger(c *gin.Context) logger.Logger {
	return logger.MustGetLogger().With(
		"route", c.Request.Method+" "+c.FullPath(),
		"tenant_id", middleware.TenantID(c),
		"user_id", middleware.UserID(c),
	)
}
