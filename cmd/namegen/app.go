package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pario-ai/namegen/pkg/audit"
	"github.com/pario-ai/namegen/pkg/budget"
	"github.com/pario-ai/namegen/pkg/config"
	"github.com/pario-ai/namegen/pkg/generator"
	"github.com/pario-ai/namegen/pkg/llm"
	"github.com/pario-ai/namegen/pkg/logging"
	"github.com/pario-ai/namegen/pkg/tracker"
)

const defaultConfigPath = "namegen.yaml"

// app holds the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	ledger   *budget.Ledger
	tracker  *tracker.SQLiteTracker
	auditor  *audit.Logger
	gen      *generator.Orchestrator

	closers []func() error
}

// loadConfig reads path. A missing default config file falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		cfg = config.Default()
		err = cfg.Validate()
	}
	if err != nil {
		return nil, err
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = providerKeyFromEnv(cfg.Provider.Type)
	}
	return cfg, nil
}

func providerKeyFromEnv(providerType string) string {
	if k := os.Getenv("NAMEGEN_API_KEY"); k != "" {
		return k
	}
	if providerType == "gemini" {
		return os.Getenv("GEMINI_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

// newApp wires the ledger, stores and event log. withGenerator also builds
// the upstream client and orchestrator.
func newApp(ctx context.Context, configPath string, withGenerator bool) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.closers = append(a.closers, func() error { _ = logger.Sync(); return nil })

	if err := a.openLedger(ctx); err != nil {
		a.close()
		return nil, err
	}

	if cfg.Audit.Enabled {
		a.auditor, err = audit.New(cfg.Audit, logging.Component(logger, "audit"))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init event log: %w", err)
		}
		a.closers = append(a.closers, a.auditor.Close)
	}

	if withGenerator {
		client, err := llm.New(ctx, cfg.Provider)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init provider: %w", err)
		}
		opts := []generator.Option{
			generator.WithSettings(cfg.Generation),
			generator.WithTariff(cfg.Pricing),
			generator.WithLogger(logging.Component(logger, "generator")),
			generator.WithRegisterer(a.registry),
		}
		if a.auditor != nil {
			opts = append(opts, generator.WithEventSink(a.auditor))
		}
		a.gen = generator.New(client, a.ledger, opts...)
	}
	return a, nil
}

func (a *app) openLedger(ctx context.Context) error {
	loc, err := a.cfg.Budget.Location()
	if err != nil {
		return err
	}

	var store budget.Store
	switch a.cfg.Budget.Store {
	case "sqlite":
		tr, err := tracker.New(a.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("init tracker: %w", err)
		}
		a.tracker = tr
		a.closers = append(a.closers, tr.Close)
		store = tr
	case "redis":
		rc := a.cfg.Budget.Redis
		client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis %s: %w", rc.Addr, err)
		}
		store = budget.NewRedisStore(client, rc.KeyPrefix)
	default:
		store = budget.NewMemoryStore()
	}

	a.ledger = budget.New(a.cfg.Budget.Limits(), store,
		budget.WithLocation(loc),
		budget.WithLogger(logging.Component(a.logger, "budget")),
	)
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
