package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/pario-ai/namegen/pkg/models"
)

// ErrBudgetExceeded is returned when a scope has reached a spend ceiling.
var ErrBudgetExceeded = errors.New("budget exceeded")

// AnonymousScope is the shared scope used when the caller supplies none.
const AnonymousScope = "anonymous"

// ExceededError reports which ceiling a scope hit. It matches ErrBudgetExceeded.
type ExceededError struct {
	Scope  string
	Period models.BudgetPeriod
	Spent  float64
	Limit  float64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("%s budget exceeded for scope %q: spent $%.4f of $%.2f", e.Period, e.Scope, e.Spent, e.Limit)
}

// Is lets errors.Is match ErrBudgetExceeded.
func (e *ExceededError) Is(target error) bool { return target == ErrBudgetExceeded }

// Code is the stable error code callers map to a "try again later" message.
func (e *ExceededError) Code() string { return "BUDGET_EXCEEDED" }

// Ledger is a soft admission gate that tracks spend per caller scope against
// fixed daily and monthly ceilings. Enforcement is per process only.
type Ledger struct {
	store  Store
	limits models.BudgetLimits
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger

	mu    sync.Mutex
	gates map[string]*gate
}

// gate serializes check-then-record for one scope. refs counts holders and
// waiters; the entry is dropped when it reaches zero.
type gate struct {
	sem  *semaphore.Weighted
	refs int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocation sets the reference timezone for day and month windows.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Ledger enforcing limits over the given store.
func New(limits models.BudgetLimits, store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		limits: limits,
		loc:    time.UTC,
		now:    time.Now,
		logger: zap.NewNop(),
		gates:  make(map[string]*gate),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Scope normalizes a caller scope, mapping blank to AnonymousScope.
func Scope(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return AnonymousScope
	}
	return scope
}

// Limits returns the configured ceilings.
func (l *Ledger) Limits() models.BudgetLimits { return l.limits }

// Acquire takes the exclusive gate for scope. Callers hold it from Check
// until Record so concurrent calls cannot both pass the same check.
// The returned release func is idempotent. A scope's gate is dropped once
// nothing holds or waits on it.
func (l *Ledger) Acquire(ctx context.Context, scope string) (func(), error) {
	scope = Scope(scope)
	g := l.ref(scope)
	if err := g.sem.Acquire(ctx, 1); err != nil {
		l.unref(scope, g)
		return nil, fmt.Errorf("acquire budget gate: %w", err)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.sem.Release(1)
			l.unref(scope, g)
		})
	}, nil
}

func (l *Ledger) ref(scope string) *gate {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.gates[scope]
	if !ok {
		g = &gate{sem: semaphore.NewWeighted(1)}
		l.gates[scope] = g
	}
	g.refs++
	return g
}

func (l *Ledger) unref(scope string, g *gate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g.refs--
	if g.refs == 0 && l.gates[scope] == g {
		delete(l.gates, scope)
	}
}

func (l *Ledger) gateCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.gates)
}

// Check returns an *ExceededError if the scope's spend for the current day or
// month has reached its ceiling. Store read failures fail open.
func (l *Ledger) Check(ctx context.Context, scope string) error {
	scope = Scope(scope)
	state, err := l.store.Load(ctx, scope, l.window())
	if err != nil {
		l.logger.Warn("budget store unavailable, admitting request",
			zap.String("scope", scope), zap.Error(err))
		return nil
	}
	if state.DailySpent >= l.limits.Daily {
		return &ExceededError{Scope: scope, Period: models.BudgetDaily, Spent: state.DailySpent, Limit: l.limits.Daily}
	}
	if state.MonthlySpent >= l.limits.Monthly {
		return &ExceededError{Scope: scope, Period: models.BudgetMonthly, Spent: state.MonthlySpent, Limit: l.limits.Monthly}
	}
	return nil
}

// Record adds amount to the scope's day and month spend and counts the
// request. It never fails; store errors are logged.
func (l *Ledger) Record(ctx context.Context, scope string, amount float64) {
	scope = Scope(scope)
	if amount < 0 {
		l.logger.Warn("negative spend ignored", zap.String("scope", scope), zap.Float64("amount", amount))
		amount = 0
	}
	if err := l.store.Add(ctx, scope, l.window(), amount); err != nil {
		l.logger.Error("record spend failed",
			zap.String("scope", scope), zap.Float64("amount", amount), zap.Error(err))
	}
}

// Stats returns the scope's spend and remaining allowance. It never mutates state.
func (l *Ledger) Stats(ctx context.Context, scope string) (models.BudgetStats, error) {
	scope = Scope(scope)
	state, err := l.store.Load(ctx, scope, l.window())
	if err != nil {
		return models.BudgetStats{}, fmt.Errorf("budget stats: %w", err)
	}
	return models.BudgetStats{
		Scope:            scope,
		DailySpent:       state.DailySpent,
		MonthlySpent:     state.MonthlySpent,
		DailyRemaining:   remaining(l.limits.Daily, state.DailySpent),
		MonthlyRemaining: remaining(l.limits.Monthly, state.MonthlySpent),
		RequestCount:     state.RequestCount,
		DailyLimit:       l.limits.Daily,
		MonthlyLimit:     l.limits.Monthly,
	}, nil
}

// Prune drops idle scopes when the store supports it and reports how many were removed.
func (l *Ledger) Prune() int {
	p, ok := l.store.(Pruner)
	if !ok {
		return 0
	}
	return p.Prune(l.window())
}

func (l *Ledger) window() Window {
	return WindowAt(l.now(), l.loc)
}

func remaining(limit, spent float64) float64 {
	if r := limit - spent; r > 0 {
		return r
	}
	return 0
}
