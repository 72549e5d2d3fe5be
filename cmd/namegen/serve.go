package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pario-ai/namegen/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Budget.Store == "memory" && a.cfg.Budget.PruneSchedule != "" {
				sched, err := startPruner(a)
				if err != nil {
					return err
				}
				defer sched.Stop()
			}

			srv := server.New(a.cfg.Listen, a.gen, a.logger.Named("http"), a.registry)
			a.logger.Info("starting namegen",
				zap.String("config", configPath),
				zap.String("provider", a.cfg.Provider.Type),
				zap.String("budget_store", a.cfg.Budget.Store),
			)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

// startPruner schedules removal of idle scopes from the in-memory ledger.
func startPruner(a *app) (*cron.Cron, error) {
	loc, err := a.cfg.Budget.Location()
	if err != nil {
		return nil, err
	}
	if _, err := cron.ParseStandard(a.cfg.Budget.PruneSchedule); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", a.cfg.Budget.PruneSchedule, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(a.cfg.Budget.PruneSchedule, func() {
		if n := a.ledger.Prune(); n > 0 {
			a.logger.Info("pruned idle budget scopes", zap.Int("count", n))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
