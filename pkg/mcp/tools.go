package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pario-ai/namegen/pkg/audit"
	"github.com/pario-ai/namegen/pkg/budget"
	"github.com/pario-ai/namegen/pkg/llm"
	"github.com/pario-ai/namegen/pkg/models"
)

type generateArgs struct {
	Seed        string              `json:"seed" jsonschema:"description=Name to adapt, for example John"`
	Gender      models.Gender       `json:"gender" jsonschema:"enum=male,enum=female,enum=neutral"`
	Style       models.Style        `json:"style" jsonschema:"enum=traditional,enum=modern,enum=elegant,enum=nature,enum=literary"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
	Scope       string              `json:"scope,omitempty" jsonschema:"description=Caller scope charged for the call (default anonymous)"`
}

type scopeArgs struct {
	Scope string `json:"scope,omitempty" jsonschema:"description=Caller scope (default anonymous for budget, all scopes for spend)"`
}

type eventArgs struct {
	Outcome string `json:"outcome,omitempty" jsonschema:"enum=generated,enum=degraded,enum=rejected"`
	Since   string `json:"since,omitempty" jsonschema:"description=Start date in YYYY-MM-DD format"`
	Scope   string `json:"scope,omitempty" jsonschema:"description=Only events charged to this caller scope"`
}

type tool struct {
	def    ToolDefinition
	handle func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult
}

var tools = []tool{
	{
		def: ToolDefinition{
			Name:        "namegen_generate",
			Description: "Generate three Chinese name candidates for a seed name, gender and style. Charged against the scope's budget.",
			InputSchema: llm.GenerateSchema[generateArgs](),
		},
		handle: handleGenerate,
	},
	{
		def: ToolDefinition{
			Name:        "namegen_budget",
			Description: "Show daily and monthly spend and remaining allowance for a caller scope.",
			InputSchema: llm.GenerateSchema[scopeArgs](),
		},
		handle: handleBudget,
	},
	{
		def: ToolDefinition{
			Name:        "namegen_spend",
			Description: "Show recorded spend per caller scope from the durable spend log.",
			InputSchema: llm.GenerateSchema[scopeArgs](),
		},
		handle: handleSpend,
	},
	{
		def: ToolDefinition{
			Name:        "namegen_events",
			Description: "Search recent generation events, including fallbacks and budget rejections.",
			InputSchema: llm.GenerateSchema[eventArgs](),
		},
		handle: handleEvents,
	},
}

func toolDefinitions() []ToolDefinition {
	defs := make([]ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = t.def
	}
	return defs
}

func lookupTool(name string) (tool, bool) {
	for _, t := range tools {
		if t.def.Name == name {
			return t, true
		}
	}
	return tool{}, false
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func handleGenerate(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args generateArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	req := models.NamingRequest{
		Seed:        args.Seed,
		Gender:      args.Gender,
		Style:       args.Style,
		Preferences: args.Preferences,
	}

	env, err := s.gen.Generate(ctx, req, args.Scope)
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return errorResult(vErr.Error())
	case errors.Is(err, budget.ErrBudgetExceeded):
		return errorResult("Budget exceeded: " + err.Error())
	case err != nil:
		return errorResult("Generation failed: " + err.Error())
	}
	return textResult(formatEnvelope(env))
}

func handleBudget(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args scopeArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	stats, err := s.gen.Stats(ctx, args.Scope)
	if err != nil {
		return errorResult("Error fetching budget: " + err.Error())
	}
	return textResult(formatBudget(stats))
}

func handleSpend(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	if s.spend == nil {
		return textResult("Durable spend log is not configured.")
	}
	var args scopeArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	rows, err := s.spend.Summary(ctx, args.Scope)
	if err != nil {
		return errorResult("Error fetching spend: " + err.Error())
	}
	return textResult(formatSpend(rows))
}

func handleEvents(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	if s.events == nil {
		return textResult("Event log is not configured.")
	}
	var args eventArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}

	opts := models.EventQueryOpts{Outcome: models.Outcome(args.Outcome), Limit: 50}
	if args.Scope != "" {
		_, opts.ScopePrefix = audit.HashScope(args.Scope)
	}
	if args.Since != "" {
		t, err := time.Parse("2006-01-02", args.Since)
		if err != nil {
			return errorResult("Invalid since date (use YYYY-MM-DD): " + err.Error())
		}
		opts.Since = t
	}

	events, err := s.events.Query(ctx, opts)
	if err != nil {
		return errorResult("Error searching events: " + err.Error())
	}
	return textResult(formatEvents(events))
}

func formatEnvelope(env *models.Envelope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request %s (%d ms, $%.4f)\n\n", env.RequestID, env.GenerationTime, env.TotalCost)
	for i, n := range env.Names {
		fmt.Fprintf(&b, "%d. %s (%s) score %d\n", i+1, n.Name, n.Romanization, n.Score)
		if n.Meaning != "" {
			fmt.Fprintf(&b, "   Meaning: %s\n", n.Meaning)
		}
		if n.CulturalBackground != "" {
			fmt.Fprintf(&b, "   Background: %s\n", n.CulturalBackground)
		}
	}
	return b.String()
}

func formatBudget(s models.BudgetStats) string {
	return fmt.Sprintf("Budget for %s\n"+
		"  Daily:    $%.4f spent, $%.4f remaining of $%.2f\n"+
		"  Monthly:  $%.4f spent, $%.4f remaining of $%.2f\n"+
		"  Requests: %d\n",
		s.Scope,
		s.DailySpent, s.DailyRemaining, s.DailyLimit,
		s.MonthlySpent, s.MonthlyRemaining, s.MonthlyLimit,
		s.RequestCount)
}

func formatSpend(rows []models.SpendSummary) string {
	if len(rows) == 0 {
		return "No spend recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %8s %12s  %s\n", "Scope", "Requests", "Spent", "Last")
	b.WriteString(strings.Repeat("-", 68) + "\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-24s %8d %12.4f  %s\n",
			truncate(r.Scope, 24), r.RequestCount, r.TotalSpent, r.LastAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func formatEvents(events []models.GenerationEvent) string {
	if len(events) == 0 {
		return "No events found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-42s %-9s %-10s %-10s %9s\n", "Time", "Request", "Scope", "Outcome", "Cause", "Cost")
	b.WriteString(strings.Repeat("-", 106) + "\n")
	for _, e := range events {
		fmt.Fprintf(&b, "%-20s %-42s %-9s %-10s %-10s %9.4f\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.RequestID, e.ScopePrefix, e.Outcome, e.Cause, e.Cost)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
