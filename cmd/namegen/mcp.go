package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pario-ai/namegen/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve namegen tools over stdio for MCP clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			opts := []mcp.Option{mcp.WithLogger(a.logger.Named("mcp"))}
			if a.tracker != nil {
				opts = append(opts, mcp.WithSpend(a.tracker))
			}
			if a.auditor != nil {
				opts = append(opts, mcp.WithEvents(a.auditor))
			}
			return mcp.New(a.gen, version, opts...).Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
