// Package generator orchestrates budget-checked name generation with a
// fallback for upstream failures.
//
// A call moves through validation, the budget check, prompting, the upstream
// call, parsing, enrichment and spend recording. Budget exhaustion rejects the
// call before any spend. Any upstream or parse failure is absorbed: the caller
// receives the fixed fallback set at zero cost.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pario-ai/namegen/pkg/budget"
	"github.com/pario-ai/namegen/pkg/config"
	"github.com/pario-ai/namegen/pkg/costs"
	"github.com/pario-ai/namegen/pkg/fallback"
	"github.com/pario-ai/namegen/pkg/llm"
	"github.com/pario-ai/namegen/pkg/models"
	"github.com/pario-ai/namegen/pkg/parse"
	"github.com/pario-ai/namegen/pkg/prompt"
	"github.com/pario-ai/namegen/pkg/scoring"
)

// Degradation causes.
const (
	CauseTimeout  = "timeout"
	CauseUpstream = "upstream"
	CauseParse    = "parse"
)

// IDPrefix starts every request id.
const IDPrefix = "gen_"

const schemaName = "name_candidates"

// EventSink receives one event per generation call.
type EventSink interface {
	Log(ctx context.Context, ev models.GenerationEvent) error
}

// Sleeper pauses between batch items. It returns early with ctx.Err() on cancellation.
type Sleeper func(ctx context.Context, d time.Duration) error

// Orchestrator runs generation calls against one upstream client and ledger.
type Orchestrator struct {
	client   llm.Client
	ledger   *budget.Ledger
	builder  prompt.Builder
	calc     *costs.Calculator
	settings config.GenerationConfig
	schema   any

	logger  *zap.Logger
	metrics *Metrics
	sink    EventSink
	now     func() time.Time
	sleep   Sleeper
	newID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSettings overrides the upstream call and batch parameters.
func WithSettings(s config.GenerationConfig) Option {
	return func(o *Orchestrator) { o.settings = s }
}

// WithTariff overrides the pricing used for recorded spend.
func WithTariff(t models.Tariff) Option {
	return func(o *Orchestrator) { o.calc = costs.NewCalculator(t) }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegisterer registers metrics with reg instead of leaving them unregistered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Orchestrator) { o.metrics = NewMetrics(reg) }
}

// WithEventSink sends a GenerationEvent per call to sink.
func WithEventSink(sink EventSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithClock overrides the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithSleeper overrides the batch delay implementation.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithIDGenerator overrides request id generation.
func WithIDGenerator(f func() string) Option {
	return func(o *Orchestrator) { o.newID = f }
}

// DefaultSettings returns the built-in generation parameters.
func DefaultSettings() config.GenerationConfig {
	return config.Default().Generation
}

// New creates an Orchestrator.
func New(client llm.Client, ledger *budget.Ledger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		ledger:   ledger,
		calc:     costs.NewCalculator(costs.DefaultTariff()),
		settings: DefaultSettings(),
		schema:   llm.GenerateSchema[parse.Payload](),
		logger:   zap.NewNop(),
		now:      time.Now,
		sleep:    sleepContext,
		newID:    NewRequestID,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}
	if o.settings.Timeout <= 0 {
		o.settings.Timeout = DefaultSettings().Timeout
	}
	return o
}

// NewRequestID returns a fresh request id.
func NewRequestID() string {
	return IDPrefix + uuid.NewString()
}

// Generate produces name candidates for req, charged to scope.
//
// It returns a *models.ValidationError for malformed requests, an error
// matching budget.ErrBudgetExceeded when the scope is out of budget, or the
// context error if ctx ends while waiting for the scope. Every other failure
// yields a degraded envelope.
func (o *Orchestrator) Generate(ctx context.Context, req models.NamingRequest, scope string) (*models.Envelope, error) {
	start := o.now()
	scope = budget.Scope(scope)
	id := o.newID()

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		o.logger.Info("request rejected", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	release, err := o.ledger.Acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.ledger.Check(ctx, scope); err != nil {
		o.reject(ctx, id, scope, req, start, err)
		return nil, err
	}

	system, user := o.builder.Build(req)
	callCtx, cancel := context.WithTimeout(ctx, o.settings.Timeout)
	resp, err := o.client.Complete(callCtx, llm.Request{
		SystemPrompt:    system,
		UserPrompt:      user,
		SchemaName:      schemaName,
		Schema:          o.schema,
		MaxOutputTokens: o.settings.MaxOutputTokens,
		Temperature:     o.settings.Temperature,
		TopP:            o.settings.TopP,
	})
	cancel()
	if err != nil {
		cause := CauseUpstream
		if llm.IsTimeout(err) {
			cause = CauseTimeout
		}
		return o.degrade(ctx, id, scope, req, start, cause, err), nil
	}

	names, err := parse.Parse(resp.Text)
	if err != nil {
		return o.degrade(ctx, id, scope, req, start, CauseParse, err), nil
	}
	for i := range names {
		names[i] = enrich(names[i])
	}

	cost := o.calc.Cost(resp.Usage)
	o.ledger.Record(ctx, scope, cost)
	o.metrics.spend.Add(cost)

	env := &models.Envelope{
		Names:          names,
		TotalCost:      cost,
		GenerationTime: o.since(start).Milliseconds(),
		RequestID:      id,
	}
	o.metrics.observe(string(models.OutcomeGenerated), o.since(start).Seconds())
	o.logger.Info("names generated",
		zap.String("request_id", id),
		zap.String("scope", scope),
		zap.String("model", resp.Model),
		zap.Int("names", len(names)),
		zap.Float64("cost", cost),
		zap.Int64("generation_ms", env.GenerationTime),
	)

	ev := o.event(id, scope, req, models.OutcomeGenerated, start)
	ev.Model = resp.Model
	ev.NameCount = len(names)
	ev.Cost = cost
	if resp.Usage != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
	}
	o.emit(ctx, ev)
	return env, nil
}

// BatchGenerate runs reqs one at a time with the configured delay between
// successive calls. Failed items are logged and left out of the result. If
// ctx ends, no further items are started and the partial results are
// returned with ctx.Err(); the item in flight is not interrupted.
func (o *Orchestrator) BatchGenerate(ctx context.Context, reqs []models.NamingRequest, scope string) ([]*models.Envelope, error) {
	if limit := o.settings.MaxBatchSize; limit > 0 && len(reqs) > limit {
		return nil, &models.ValidationError{
			Field:   "requests",
			Rule:    "max",
			Message: fmt.Sprintf("requests must have at most %d entries", limit),
		}
	}

	out := make([]*models.Envelope, 0, len(reqs))
	for i, req := range reqs {
		if i > 0 {
			if err := o.sleep(ctx, o.settings.BatchDelay); err != nil {
				return out, err
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		// An item already started runs to completion or its own timeout.
		env, err := o.Generate(context.WithoutCancel(ctx), req, scope)
		if err != nil {
			o.logger.Warn("batch item failed",
				zap.Int("index", i), zap.String("scope", budget.Scope(scope)), zap.Error(err))
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// Stats returns the scope's budget state. It never mutates it.
func (o *Orchestrator) Stats(ctx context.Context, scope string) (models.BudgetStats, error) {
	return o.ledger.Stats(ctx, scope)
}

func (o *Orchestrator) degrade(ctx context.Context, id, scope string, req models.NamingRequest, start time.Time, cause string, err error) *models.Envelope {
	env := &models.Envelope{
		Names:          fallback.Names(),
		TotalCost:      0,
		GenerationTime: o.since(start).Milliseconds(),
		RequestID:      id,
		Degraded:       true,
		Cause:          cause,
	}
	o.metrics.degradations.WithLabelValues(cause).Inc()
	o.metrics.observe(string(models.OutcomeDegraded), o.since(start).Seconds())
	o.logger.Warn("serving fallback names",
		zap.String("request_id", id),
		zap.String("scope", scope),
		zap.String("cause", cause),
		zap.Error(err),
	)

	ev := o.event(id, scope, req, models.OutcomeDegraded, start)
	ev.Cause = cause
	ev.NameCount = len(env.Names)
	o.emit(ctx, ev)
	return env
}

func (o *Orchestrator) reject(ctx context.Context, id, scope string, req models.NamingRequest, start time.Time, err error) {
	period := "unknown"
	var exceeded *budget.ExceededError
	if errors.As(err, &exceeded) {
		period = string(exceeded.Period)
	}
	o.metrics.budgetRejections.WithLabelValues(period).Inc()
	o.metrics.observe(string(models.OutcomeRejected), o.since(start).Seconds())
	o.logger.Info("budget exceeded",
		zap.String("request_id", id), zap.String("scope", scope), zap.String("period", period))

	ev := o.event(id, scope, req, models.OutcomeRejected, start)
	ev.Cause = "budget_" + period
	o.emit(ctx, ev)
}

func (o *Orchestrator) event(id, scope string, req models.NamingRequest, outcome models.Outcome, start time.Time) models.GenerationEvent {
	return models.GenerationEvent{
		RequestID: id,
		Scope:     scope,
		Outcome:   outcome,
		Style:     req.Style,
		LatencyMs: o.since(start).Milliseconds(),
		CreatedAt: o.now(),
	}
}

func (o *Orchestrator) emit(ctx context.Context, ev models.GenerationEvent) {
	if o.sink == nil {
		return
	}
	if err := o.sink.Log(ctx, ev); err != nil {
		o.logger.Warn("event log write failed", zap.String("request_id", ev.RequestID), zap.Error(err))
	}
}

func (o *Orchestrator) since(start time.Time) time.Duration {
	return o.now().Sub(start)
}

// enrich trims model output, fills pronunciation and assigns the score.
func enrich(n models.Name) models.Name {
	n.Name = strings.TrimSpace(n.Name)
	n.Romanization = strings.TrimSpace(n.Romanization)
	n.Meaning = strings.TrimSpace(n.Meaning)
	n.CulturalBackground = strings.TrimSpace(n.CulturalBackground)
	n.Pronunciation = strings.TrimSpace(n.Pronunciation)
	if n.Pronunciation == "" {
		n.Pronunciation = n.Romanization
	}
	n.Score = scoring.Score(n)
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
