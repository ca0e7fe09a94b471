package server

import (
	"net/http"
	"time"

	ginhandler "user-rest-service/internal/adapter/gin/handler"
	"user-rest-service/internal/adapter/gin/middleware"
	ginrouter "user-rest-service/internal/adapter/gin/router"
	"user-rest-service/internal/config"
	redisclient "user-rest-service/pkg/redis"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server holds the HTTP server and its dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	handler *ginhandler.UserHandler,
	health *ginhandler.HealthHandler,
	rateLimit middleware.RateLimiterConfig,
	redisClient *redisclient.Client,
) *Server {
	var rdb *redis.Client
	if redisClient != nil {
		rdb = redisClient.Client
	}

	router := ginrouter.SetupRouter(handler, health, rdb, rateLimit, l)

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              ":" + cfg.App.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
	return s.HTTP.ListenAndServe()
}
