package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/media"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/preferences"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/prometheus/client_golang/prometheus"
)

// Accounts checks and creates logins without any session state.
type Accounts interface {
	Authenticate(ctx context.Context, creds models.Credentials) (*models.User, *common.APIError, error)
	Register(ctx context.Context, creds models.Credentials) (*models.User, *common.APIError, error)
}

// ThemeStore is the preferences surface the API exposes.
type ThemeStore interface {
	Theme(ctx context.Context) (preferences.Theme, error)
	SetTheme(ctx context.Context, t preferences.Theme) error
	Toggle(ctx context.Context) (preferences.Theme, error)
}

// Uploader presigns media uploads and downloads.
type Uploader interface {
	Enabled() bool
	PresignUpload(ctx context.Context, kind, userID, contentType string) (media.Upload, error)
	PresignDownload(ctx context.Context, key string) (media.Upload, error)
}

// Deps wires a Server. Prefs and Media may be nil; their routes then
// answer 503.
type Deps struct {
	Data        query.Executor
	Accounts    Accounts
	Prefs       ThemeStore
	Media       Uploader
	Secret      []byte
	TokenTTL    time.Duration
	CORSOrigins []string
	Registry    *prometheus.Registry
	Logger      logging.Logger
}

type Server struct {
	address string
	deps    Deps
	metrics *metrics
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, d Deps) (*Server, error) {
	if d.Data == nil || d.Accounts == nil {
		return nil, errors.New("httpapi: data and accounts are required")
	}
	if len(d.Secret) == 0 {
		return nil, errors.New("httpapi: empty token secret")
	}
	if d.TokenTTL <= 0 {
		d.TokenTTL = 15 * time.Minute
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	m, err := newMetrics(d.Registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address: address,
		deps:    d,
		metrics: m,
		logger:  d.Logger.With("module", "http_server"),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
