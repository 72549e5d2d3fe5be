package budget

import (
	"context"
	"sync"
	"time"

	"github.com/pario-ai/namegen/pkg/models"
)

// Window identifies the calendar day and month a spend belongs to.
type Window struct {
	Day        string // 2006-01-02
	Month      string // 2006-01
	DayStart   time.Time
	MonthStart time.Time
	At         time.Time
}

// WindowAt computes the window containing t in loc.
func WindowAt(t time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()
	return Window{
		Day:        local.Format("2006-01-02"),
		Month:      local.Format("2006-01"),
		DayStart:   time.Date(y, m, d, 0, 0, 0, 0, loc),
		MonthStart: time.Date(y, m, 1, 0, 0, 0, 0, loc),
		At:         t,
	}
}

// Store persists per-scope spend accumulators.
type Store interface {
	// Add records amount against the scope for window w and counts one request.
	Add(ctx context.Context, scope string, w Window, amount float64) error
	// Load returns the scope's accounting state for window w.
	Load(ctx context.Context, scope string, w Window) (models.BudgetWindow, error)
}

// Pruner is implemented by stores that can forget idle scopes.
type Pruner interface {
	Prune(w Window) int
}

// MemoryStore keeps accumulators in process memory. A restart resets all budgets.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]models.BudgetWindow
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]models.BudgetWindow)}
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, scope string, w Window, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := rollover(m.windows[scope], w)
	st.DailySpent += amount
	st.MonthlySpent += amount
	st.RequestCount++
	m.windows[scope] = st
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, scope string, w Window) (models.BudgetWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return rollover(m.windows[scope], w), nil
}

// Prune removes scopes with no spend in the current month.
func (m *MemoryStore) Prune(w Window) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for scope, st := range m.windows {
		if st.Month != w.Month {
			delete(m.windows, scope)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked scopes.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// rollover zeroes the accumulators whose day or month marker is stale.
func rollover(st models.BudgetWindow, w Window) models.BudgetWindow {
	if st.Day != w.Day {
		st.Day = w.Day
		st.DailySpent = 0
	}
	if st.Month != w.Month {
		st.Month = w.Month
		st.MonthlySpent = 0
	}
	return st
}
