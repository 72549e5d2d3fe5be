package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBudgetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect spend ceilings",
	}

	var scopes []string
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show spend and remaining allowance for caller scopes",
		Long: "Show spend and remaining allowance for caller scopes.\n" +
			"With the in-memory store this only reflects the current process, so use a sqlite or redis store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, configPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			if len(scopes) == 0 {
				scopes = []string{""}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCOPE\tDAILY SPENT\tDAILY LEFT\tMONTHLY SPENT\tMONTHLY LEFT\tREQUESTS")
			for _, scope := range scopes {
				s, err := a.ledger.Stats(ctx, scope)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t$%.4f\t$%.4f\t$%.4f\t$%.4f\t%d\n",
					s.Scope, s.DailySpent, s.DailyRemaining, s.MonthlySpent, s.MonthlyRemaining, s.RequestCount)
			}
			return w.Flush()
		},
	}
	statusCmd.Flags().StringSliceVar(&scopes, "scope", nil, "caller scope (repeatable, default anonymous)")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.AddCommand(statusCmd)
	return cmd
}
