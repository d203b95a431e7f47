// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/pkg/allocation"
	"github.com/chainsafe/phase-distributor/pkg/app"
	apphttp "github.com/chainsafe/phase-distributor/pkg/app/http"
	claimservice "github.com/chainsafe/phase-distributor/pkg/claim/service"
	"github.com/chainsafe/phase-distributor/pkg/config"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/pgutil"
	phaseservice "github.com/chainsafe/phase-distributor/pkg/phase/service"
)

const apiPrefix = "/api/v1"

var _ app.Runner = (*Server)(nil)

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting distributor API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("network", cfg.Distribution.Network),
	)

	tolerances, err := cfg.Distribution.Tolerances()
	if err != nil {
		return err
	}

	db, err := s.openDB(ctx, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := ledgerstore.NewStore(db, logger)

	phaseService := phaseservice.NewService(
		store,
		allocation.New(cfg.Distribution.Network),
		tolerances,
		nil,
		logger,
	)
	claimService := claimservice.NewService(store, nil, logger)

	router := s.setupRouter(
		phaseservice.NewLog(phaseService, logger),
		claimservice.NewLog(claimService, logger),
		logger,
	)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) openDB(ctx context.Context, logger *zap.Logger) (*bun.DB, error) {
	db, err := pgutil.ConnectDB(ctx, &s.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return db, nil
}

func (s *Server) setupRouter(
	phaseService phaseservice.Service,
	claimService claimservice.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle(s.cfg.Monitoring.MetricsPath, promhttp.Handler())
	}

	r.Route(apiPrefix, func(r chi.Router) {
		phaseservice.RegisterRoutes(r, phaseService, logger)
		claimservice.RegisterRoutes(r, claimService, logger)
	})

	return r
}
