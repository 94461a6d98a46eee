// file: internal/server/server.go
// version: 1.4.0
// guid: 3a9d5f17-6c82-4e40-b1a3-8d7f2e9c4b06

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhagen/dealerfinder/internal/cache"
	"github.com/mhagen/dealerfinder/internal/config"
	"github.com/mhagen/dealerfinder/internal/database"
	"github.com/mhagen/dealerfinder/internal/matcher"
	"github.com/mhagen/dealerfinder/internal/metrics"
	servermiddleware "github.com/mhagen/dealerfinder/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	router       *gin.Engine
	suggestCache *cache.Cache[[]matcher.Suggestion]
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// GetDefaultServerConfig returns default server configuration
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Host:         "localhost",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new server instance
func NewServer() *Server {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(servermiddleware.MaxRequestBodySize(1 << 20))

	limiter := servermiddleware.NewIPRateLimiter(
		config.AppConfig.RateLimitPerMinute,
		config.AppConfig.RateLimitBurst,
		time.Duration(config.AppConfig.RateLimitIdleMinutes)*time.Minute,
	)
	router.Use(limiter.Middleware())

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:       router,
		suggestCache: cache.New[[]matcher.Suggestion](30 * time.Second),
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	// Periodic housekeeping: refresh store gauges and purge dead sessions.
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if database.GlobalStore == nil {
					continue
				}
				if n, err := database.GlobalStore.CountDealers(); err == nil {
					metrics.SetDealers(n)
				}
				if n, err := database.GlobalStore.CountReviews(); err == nil {
					metrics.SetReviews(n)
				}
				if n, err := database.GlobalStore.DeleteExpiredSessions(time.Now()); err == nil && n > 0 {
					log.Printf("[INFO] purged %d expired sessions", n)
				}
			case <-done:
				return
			}
		}
	}()

	<-quit
	close(done)

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		// Public directory routes
		api.GET("/dealers", s.listDealers)
		api.GET("/dealers/:id", s.getDealer)
		api.GET("/dealers/:id/reviews", s.listDealerReviews)

		// Search & suggestions
		api.GET("/search", s.searchDealers)
		api.GET("/suggest", s.suggestCompletions)

		// Auth
		api.GET("/auth/status", s.getAuthStatus)
		api.POST("/auth/setup", s.setupInitialAdmin)
		api.POST("/auth/login", s.login)

		// Routes past this point require a session (once users exist).
		authed := api.Group("")
		authed.Use(servermiddleware.RequireAuth(s.authStore()))
		{
			authed.POST("/dealers", s.createDealer)
			authed.PUT("/dealers/:id", s.updateDealer)
			authed.DELETE("/dealers/:id", s.deleteDealer)

			authed.POST("/dealers/:id/reviews", s.createDealerReview)
			authed.DELETE("/reviews/:id", s.deleteReview)

			authed.POST("/auth/logout", s.logout)
			authed.GET("/auth/me", s.me)
			authed.GET("/auth/sessions", s.listMySessions)
			authed.DELETE("/auth/sessions/:id", s.revokeMySession)
		}
	}
}

// authStore returns the store used for session checks, or nil when auth is
// disabled so RequireAuth becomes a pass-through.
func (s *Server) authStore() database.Store {
	if !config.AppConfig.EnableAuth {
		return nil
	}
	return database.GlobalStore
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	// Gather basic counts; tolerate errors (don't fail health entirely)
	var dealerCount, reviewCount int
	var dbErr error
	if database.GlobalStore != nil {
		if n, err := database.GlobalStore.CountDealers(); err == nil {
			dealerCount = n
		} else {
			dbErr = err
		}
		if n, err := database.GlobalStore.CountReviews(); err == nil {
			reviewCount = n
		} else if dbErr == nil {
			dbErr = err
		}
	}
	resp := gin.H{
		"status":     "ok",
		"timestamp":  time.Now().Unix(),
		"store_type": config.AppConfig.StoreType,
		"metrics": gin.H{
			"dealers": dealerCount,
			"reviews": reviewCount,
		},
	}
	if dbErr != nil {
		resp["partial_error"] = dbErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}
