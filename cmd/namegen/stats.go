package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		scope      string
		history    bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded spend per caller scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, configPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			if a.tracker == nil {
				fmt.Println("Spend history requires budget.store: sqlite.")
				return nil
			}

			if history {
				if scope == "" {
					return fmt.Errorf("--history requires --scope")
				}
				records, err := a.tracker.Query(ctx, scope, time.Now().AddDate(0, -1, 0))
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Println("No spend recorded.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTIME\tAMOUNT")
				for _, r := range records {
					fmt.Fprintf(w, "%d\t%s\t$%.4f\n", r.ID, r.CreatedAt.Format("2006-01-02T15:04:05"), r.Amount)
				}
				return w.Flush()
			}

			summaries, err := a.tracker.Summary(ctx, scope)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No spend recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCOPE\tREQUESTS\tTOTAL SPENT\tLAST")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%d\t$%.4f\t%s\n",
					s.Scope, s.RequestCount, s.TotalSpent, s.LastAt.Format("2006-01-02T15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&scope, "scope", "", "filter by caller scope")
	cmd.Flags().BoolVar(&history, "history", false, "list individual charges from the last month")
	return cmd
}
