// Package server assembles and runs the NewsInsight API server: it opens the
// data backend and realtime hub, the preferences store and the media
// presigner, serves them over HTTP and shuts everything down on SIGINT or
// SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/media"
	"github.com/dmitrijs2005/newsinsight/internal/preferences"
	"github.com/dmitrijs2005/newsinsight/internal/server/httpapi"
)

// Seams for tests.
var (
	openBackend     = backend.Open
	openPreferences = preferences.Open
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	client  *backend.Client
	server  *httpapi.Server
	closers []io.Closer
}

// NewApp opens every dependency named by c. The server is itself a backend,
// so remote credentials are ignored here: data comes from Postgres when a
// DSN is set and from the in-memory fixtures otherwise.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	cfg := *c
	cfg.BackendURL, cfg.BackendKey = "", ""

	client, err := openBackend(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("backend init error: %w", err)
	}

	accounts, ok := client.Backend.(httpapi.Accounts)
	if !ok {
		_ = client.Close()
		return nil, fmt.Errorf("backend %q cannot serve accounts", client.Kind())
	}

	prefs, err := openPreferences(ctx, c.PreferencesPath, logger)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("preferences init error: %w", err)
	}

	srv, err := httpapi.NewServer(c.EndpointAddrHTTP, httpapi.Deps{
		Data:        client,
		Accounts:    accounts,
		Prefs:       prefs,
		Media:       media.NewPresigner(media.OptionsFromConfig(c)),
		Secret:      []byte(c.SecretKey),
		TokenTTL:    c.AccessTokenValidityDuration,
		CORSOrigins: c.CORSOrigins(),
		Logger:      logger,
	})
	if err != nil {
		_ = prefs.Close()
		_ = client.Close()
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger,
		client:  client,
		server:  srv,
		closers: []io.Closer{prefs, client},
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then releases
// every dependency.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.client.Kind())

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	return app.Close()
}

// Close releases the preferences store, then the backend and hub.
func (app *App) Close() error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c.Close())
	}
	app.closers = nil
	return errors.Join(errs...)
}
