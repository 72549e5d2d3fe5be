package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pario-ai/namegen/pkg/audit"
	"github.com/pario-ai/namegen/pkg/models"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Query and manage the generation event log",
	}

	cmd.AddCommand(
		newEventsSearchCmd(),
		newEventsStatsCmd(),
		newEventsCleanupCmd(),
	)
	return cmd
}

func newEventsSearchCmd() *cobra.Command {
	var (
		configPath string
		outcome    string
		since      string
		scope      string
		requestID  string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search generation events",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cleanup, err := openEventLog(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := models.EventQueryOpts{
				Outcome:   models.Outcome(outcome),
				RequestID: requestID,
				Limit:     limit,
			}
			if scope != "" {
				_, opts.ScopePrefix = audit.HashScope(scope)
			}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				opts.Since = t
			}

			events, err := l.Query(context.Background(), opts)
			if err != nil {
				return err
			}
			fmt.Print(formatEvents(events))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&outcome, "outcome", "", "filter by outcome (generated, degraded, rejected)")
	cmd.Flags().StringVar(&since, "since", "", "only events on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scope, "scope", "", "filter by caller scope")
	cmd.Flags().StringVar(&requestID, "request-id", "", "show a single request")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events")
	return cmd
}

func newEventsStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show event counts by outcome and day",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cleanup, err := openEventLog(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := l.Stats(context.Background())
			if err != nil {
				return err
			}
			fmt.Print(formatEventStats(stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newEventsCleanupCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete events older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cleanup, err := openEventLog(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := l.Cleanup(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d events.\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func openEventLog(configPath string) (*audit.Logger, func(), error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	l, err := audit.New(cfg.Audit, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	return l, func() { _ = l.Close() }, nil
}

func formatEvents(events []models.GenerationEvent) string {
	if len(events) == 0 {
		return "No events found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-42s %-9s %-10s %-14s %-12s %6s %8s %9s %-20s\n",
		"REQUEST ID", "SCOPE", "OUTCOME", "CAUSE", "STYLE", "NAMES", "LATENCY", "COST", "TIME")
	b.WriteString(strings.Repeat("-", 138) + "\n")
	for _, e := range events {
		fmt.Fprintf(&b, "%-42s %-9s %-10s %-14s %-12s %6d %6dms %9.4f %-20s\n",
			e.RequestID, e.ScopePrefix, e.Outcome, e.Cause, e.Style,
			e.NameCount, e.LatencyMs, e.Cost,
			e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func formatEventStats(stats []models.EventStat) string {
	if len(stats) == 0 {
		return "No events recorded.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-10s %8s\n", "DAY", "OUTCOME", "COUNT")
	b.WriteString(strings.Repeat("-", 32) + "\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-12s %-10s %8d\n", s.Day, s.Outcome, s.Count)
	}
	return b.String()
}
