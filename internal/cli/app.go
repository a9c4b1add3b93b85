package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/preferences"
)

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in, run login first")

type openClientFunc func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*backend.Client, error)

type openPrefsFunc func(ctx context.Context, path string, logger logging.Logger) (*preferences.Store, error)

// App holds what the commands share. The backend client is opened on first
// use and kept until Close, so a session survives between shell commands.
type App struct {
	config *config.Config
	logger logging.Logger
	level  *slog.LevelVar
	out    io.Writer
	reader *bufio.Reader

	openClient openClientFunc
	openPrefs  openPrefsFunc
	httpClient *http.Client

	mu         sync.Mutex
	client     *backend.Client
	signedInAs string

	jsonOutput bool
}

// NewApp builds an App reading prompts from in and printing to out.
// Diagnostics go to errOut at warn level unless --verbose is given.
func NewApp(c *config.Config, in io.Reader, out, errOut io.Writer) *App {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := logging.NewTextSlogLogger(errOut, level)

	return &App{
		config:     c,
		logger:     logger.With("module", "cli"),
		level:      level,
		out:        out,
		reader:     bufio.NewReader(in),
		openClient: backend.Open,
		openPrefs:  preferences.Open,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// backendClient returns the shared client, opening it on first use.
func (a *App) backendClient(ctx context.Context) (*backend.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := a.openClient(ctx, a.config, a.logger)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Close releases the backend client, if one was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	a.signedInAs = ""
	return err
}

// Execute runs one command line against a fresh command tree.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
