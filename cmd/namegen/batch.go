package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pario-ai/namegen/pkg/models"
)

func newBatchCmd() *cobra.Command {
	var (
		configPath string
		scope      string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "batch <requests.yaml|requests.json>",
		Short: "Generate names for a list of requests, one at a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := readRequests(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			results, err := a.gen.BatchGenerate(ctx, reqs, scope)
			if rejected := batchRejected(err); rejected != nil {
				return rejected
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "batch stopped early: %v\n", err)
			}
			if asJSON {
				return printJSON(results)
			}
			for i, env := range results {
				if i > 0 {
					fmt.Println()
				}
				if err := printEnvelope(env); err != nil {
					return err
				}
			}
			fmt.Printf("\n%d of %d requests completed\n", len(results), len(reqs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&scope, "scope", "", "caller scope charged for the batch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the responses as JSON")
	return cmd
}

// readRequests loads a list of naming requests. JSON files use the HTTP field
// names; anything else is read as YAML.
func readRequests(path string) ([]models.NamingRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	var reqs []models.NamingRequest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &reqs)
	} else {
		err = yaml.Unmarshal(data, &reqs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse requests: %w", err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no requests in %s", path)
	}
	return reqs, nil
}

// batchRejected returns err when the batch was refused as a whole, as opposed
// to stopping part way through.
func batchRejected(err error) error {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return nil
}
