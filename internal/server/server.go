package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/pulsepoll-api/internal/broadcast"
	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/handlers"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/middleware/requestlog"
	"github.com/gravadigital/pulsepoll-api/internal/services"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	service    *services.Ingestion
	hub        *broadcast.Hub
}

// New creates a new server instance
func New(cfg *config.Config, service *services.Ingestion, hub *broadcast.Hub) *Server {
	return &Server{
		config:  cfg,
		service: service,
		hub:     hub,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: the live SSE stream holds its response open
		// for the connection lifetime.
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestlog.New())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	pollHandler := handlers.NewPollHandler(s.service)
	voteHandler := handlers.NewVoteHandler(s.service)
	liveHandler := handlers.NewLiveHandler(s.service, s.hub)
	adminHandler := handlers.NewAdminHandler(s.service, s.config)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Pulsepoll API is running",
			"status":  "healthy",
		})
	})

	api := router.Group("/api")
	{
		polls := api.Group("/polls")
		{
			polls.GET("", pollHandler.GetCatalog)
			polls.GET("/:poll_id/results", voteHandler.GetResults)
		}

		api.POST("/votes", voteHandler.SubmitVote)
		api.GET("/live", liveHandler.Stream)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			admin.POST("/reset", adminHandler.RequireAdmin(), adminHandler.Reset)
		}
	}

	return router
}
