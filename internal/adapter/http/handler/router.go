package handler

import (
	"commerce-sync-service/internal/adapter/http/middleware"
	"commerce-sync-service/internal/core/ports"
	"commerce-sync-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WebhookSecret  string
	SigSvc         ports.SignatureVerifier
	Dedup          *service.Deduplicator
	Queue          ports.EventQueue
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL / Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhook receipt endpoint, signature-authenticated
	sigAuth := middleware.SignatureAuth(deps.WebhookSecret, deps.SigSvc, deps.Logger)
	webhookHandler := NewWebhookHandler(deps.Dedup, deps.Queue, deps.Logger)
	webhooks := r.Group("/webhooks", sigAuth)
	{
		webhooks.POST("/events", webhookHandler.Receive)
	}

	return r
}
