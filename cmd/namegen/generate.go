package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pario-ai/namegen/pkg/models"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		scope      string
		asJSON     bool
		req        models.NamingRequest
		prefs      models.Preferences
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate name candidates for one request",
		Example: `  namegen generate --seed John --gender male --style modern
  namegen generate --seed Anna --gender female --style nature --prefer water --avoid 冰`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			if !prefs.Empty() {
				req.Preferences = &prefs
			}
			env, err := a.gen.Generate(ctx, req, scope)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(env)
			}
			return printEnvelope(env)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&scope, "scope", "", "caller scope charged for the call")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the response as JSON")
	cmd.Flags().StringVar(&req.Seed, "seed", "", "name to adapt")
	cmd.Flags().StringVar((*string)(&req.Gender), "gender", string(models.GenderNeutral), "male, female or neutral")
	cmd.Flags().StringVar((*string)(&req.Style), "style", string(models.StyleModern), "traditional, modern, elegant, nature or literary")
	cmd.Flags().StringSliceVar(&prefs.AvoidWords, "avoid", nil, "words or characters to avoid")
	cmd.Flags().StringSliceVar(&prefs.PreferredElements, "prefer", nil, "preferred elements")
	cmd.Flags().StringVar(&prefs.MeaningFocus, "focus", "", "meaning to focus on")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEnvelope(env *models.Envelope) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROMANIZATION\tSCORE\tMEANING")
	for _, n := range env.Names {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", n.Name, n.Romanization, n.Score, n.Meaning)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nrequest %s  cost $%.4f  %d ms\n", env.RequestID, env.TotalCost, env.GenerationTime)
	return nil
}
