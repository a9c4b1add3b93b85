package backend

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/newsinsight/internal/backend/mock"
	"github.com/dmitrijs2005/newsinsight/internal/backend/postgres"
	"github.com/dmitrijs2005/newsinsight/internal/backend/remote"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
)

// Seams for tests.
var (
	connectNATS  = func(url string, l logging.Logger) (realtime.Hub, error) { return realtime.ConnectNATS(url, l) }
	openPostgres = func(ctx context.Context, dsn string, hub realtime.Hub, opts postgres.Options, l logging.Logger) (Backend, error) {
		return postgres.Open(ctx, dsn, hub, opts, l)
	}
)

// Open builds the hub and the strategy named by cfg.Strategy.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Client, error) {
	hub, err := openHub(cfg, logger)
	if err != nil {
		return nil, err
	}

	b, err := openStrategy(ctx, cfg, hub, logger)
	if err != nil {
		_ = hub.Close()
		return nil, err
	}

	logger.Info(ctx, "backend selected", "kind", b.Kind(), "realtime", hubKind(cfg))
	return NewClient(b, hub), nil
}

func openHub(cfg *config.Config, logger logging.Logger) (realtime.Hub, error) {
	if cfg.NATSURL == "" {
		return realtime.NewLocalHub(), nil
	}
	hub, err := connectNATS(cfg.NATSURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open realtime hub: %w", err)
	}
	return hub, nil
}

func openStrategy(ctx context.Context, cfg *config.Config, hub realtime.Hub, logger logging.Logger) (Backend, error) {
	switch cfg.Strategy() {
	case config.StrategyRemote:
		b, err := remote.New(remote.Options{
			URL:            cfg.BackendURL,
			Key:            cfg.BackendKey,
			AuthEventDelay: cfg.AuthEventDelay,
		}, hub, logger)
		if err != nil {
			return nil, fmt.Errorf("open remote backend: %w", err)
		}
		return b, nil
	case config.StrategyPostgres:
		b, err := openPostgres(ctx, cfg.DatabaseDSN, hub, postgres.Options{AuthEventDelay: cfg.AuthEventDelay}, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		return b, nil
	default:
		return mock.New(hub, mock.Options{AuthEventDelay: cfg.AuthEventDelay}, logger), nil
	}
}

func hubKind(cfg *config.Config) string {
	if cfg.NATSURL == "" {
		return "local"
	}
	return "nats"
}
