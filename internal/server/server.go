package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"spam-detector/internal/config"
	"spam-detector/internal/handler"
	"spam-detector/internal/middleware"
	"spam-detector/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wires the gin router to the API handlers.
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer builds the router. runs may be nil.
func NewServer(cfg *config.Config, classifier handler.Classifier, runs repository.IngestRunRepository, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	handler.NewHandler(classifier, runs, logger).RegisterRoutes(router)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: router,
		},
		logger: logger,
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Server starting", zap.String("address", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
