package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nodeflow-io/nodeflow/engine/auth"
	authrouter "github.com/nodeflow-io/nodeflow/engine/auth/router"
	authuc "github.com/nodeflow-io/nodeflow/engine/auth/uc"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	execrouter "github.com/nodeflow-io/nodeflow/engine/execution/router"
	"github.com/nodeflow-io/nodeflow/engine/execution/uc"
	"github.com/nodeflow-io/nodeflow/engine/infra/monitoring"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
	"github.com/nodeflow-io/nodeflow/pkg/config"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

// Deps aggregates everything the HTTP surface needs.
type Deps struct {
	Workflows  workflow.Repository
	Executions execution.Repository
	AuthRepo   authuc.Repository
	Registry   node.Registry
	Engine     execution.Engine
	Policy     execution.PolicyChecker
}

// Server wires the gin engine, middleware and domain routers.
type Server struct {
	cfg  *config.Config
	deps *Deps
	log  logger.Logger
	http *http.Server
}

func New(cfg *config.Config, deps *Deps, log logger.Logger) *Server {
	return &Server{cfg: cfg, deps: deps, log: log}
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestContext())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	middleware := auth.NewMiddleware(s.deps.AuthRepo)
	api := r.Group("/api/v0", middleware.Authenticate())
	admin := api.Group("/admin", middleware.RequireAdmin())

	execrouter.Register(api, &execrouter.Deps{
		Execute: uc.NewExecute(
			s.deps.Workflows,
			s.deps.Executions,
			s.deps.Registry,
			s.deps.Engine,
		),
		HandleError: uc.NewHandleErrorWorkflow(
			s.deps.Workflows,
			s.deps.Executions,
			s.deps.Engine,
			s.deps.Policy,
		),
		Executions: s.deps.Executions,
	})
	authrouter.Register(api, admin, &authrouter.Deps{Repo: s.deps.AuthRepo})
	return r
}

// requestContext tags every request with an id and the server logger.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		log := s.log.With("request_id", requestID)
		c.Request = c.Request.WithContext(
			logger.ContextWithLogger(c.Request.Context(), log),
		)
		c.Next()
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.ServerAddr(),
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		s.log.Info("HTTP server stopped")
		return nil
	}
}
