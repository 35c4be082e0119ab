// Package rest exposes the account, item and recommendation services over
// HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

type AccountService interface {
	Register(ctx context.Context, username, email, rawPassword string) (*services.AuthResult, error)
	Authenticate(ctx context.Context, username, rawPassword string) (*services.AuthResult, error)
	Delete(ctx context.Context, callerID int64) error
}

type ItemService interface {
	List(ctx context.Context, callerID int64) ([]*models.Item, error)
	Get(ctx context.Context, itemID, callerID int64) (*models.Item, error)
	Create(ctx context.Context, item *models.Item, callerID int64) (*models.Item, error)
	Update(ctx context.Context, itemID int64, item *models.Item, callerID int64) (*models.Item, error)
	Delete(ctx context.Context, itemID, callerID int64) (bool, error)
}

type RecommendationService interface {
	GetRecommendation(ctx context.Context, callerID int64) (*models.Recommendation, error)
}

// HealthCheck is a named dependency check reported by /health. A failing
// critical check turns the response into 503.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// Options configures a Server. Identity defaults to HeaderIdentity and
// Metrics to a fresh registry.
type Options struct {
	Address         string
	Accounts        AccountService
	Items           ItemService
	Recommendations RecommendationService
	Identity        IdentityResolver
	Metrics         *Metrics
	Logger          logging.Logger
	CORSOrigins     []string
	AuthRatePerMin  float64
	AuthRateBurst   int
	ShutdownTimeout time.Duration
	HealthChecks    []HealthCheck
}

type Server struct {
	address         string
	accounts        AccountService
	items           ItemService
	recommendations RecommendationService
	identity        IdentityResolver
	metrics         *Metrics
	logger          logging.Logger
	corsOrigins     []string
	authLimiter     *ipRateLimiter
	shutdownTimeout time.Duration
	healthChecks    []HealthCheck
	startedAt       time.Time

	handler http.Handler
}

func NewServer(o Options) *Server {
	s := &Server{
		address:         o.Address,
		accounts:        o.Accounts,
		items:           o.Items,
		recommendations: o.Recommendations,
		identity:        o.Identity,
		metrics:         o.Metrics,
		logger:          o.Logger.With("module", "rest_server"),
		corsOrigins:     o.CORSOrigins,
		authLimiter:     newIPRateLimiter(o.AuthRatePerMin, o.AuthRateBurst),
		shutdownTimeout: o.ShutdownTimeout,
		healthChecks:    o.HealthChecks,
		startedAt:       time.Now(),
	}
	if s.identity == nil {
		s.identity = NewHeaderIdentity()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
