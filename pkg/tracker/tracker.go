package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pario-ai/namegen/pkg/budget"
	"github.com/pario-ai/namegen/pkg/models"
)

// Tracker records paid generation calls and answers spend queries.
type Tracker interface {
	budget.Store
	// Query returns spend records for a scope since a given time, newest first.
	Query(ctx context.Context, scope string, since time.Time) ([]models.SpendRecord, error)
	// Summary returns spend aggregated per scope, optionally filtered by scope.
	Summary(ctx context.Context, scope string) ([]models.SpendSummary, error)
	// Close releases resources.
	Close() error
}

// SQLiteTracker implements Tracker with a SQLite database. It is a durable
// budget.Store: budgets survive restarts.
type SQLiteTracker struct {
	db *sql.DB
}

var _ Tracker = (*SQLiteTracker)(nil)

const createTable = `
CREATE TABLE IF NOT EXISTS spend_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scope TEXT NOT NULL,
	amount REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_spend_scope_time ON spend_records(scope, created_at);
`

// New creates a SQLiteTracker and runs auto-migration.
func New(dbPath string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tracker db: %w", err)
	}

	return &SQLiteTracker{db: db}, nil
}

// Add stores one spend record at w.At.
func (t *SQLiteTracker) Add(ctx context.Context, scope string, w budget.Window, amount float64) error {
	at := w.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO spend_records (scope, amount, created_at) VALUES (?, ?, ?)`,
		scope, amount, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record spend: %w", err)
	}
	return nil
}

// Load sums the scope's spend since the start of the window's day and month.
func (t *SQLiteTracker) Load(ctx context.Context, scope string, w budget.Window) (models.BudgetWindow, error) {
	st := models.BudgetWindow{Day: w.Day, Month: w.Month}
	err := t.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN created_at >= ? THEN amount END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN amount END), 0),
			COUNT(*)
		 FROM spend_records WHERE scope = ?`,
		w.DayStart.UTC(), w.MonthStart.UTC(), scope,
	).Scan(&st.DailySpent, &st.MonthlySpent, &st.RequestCount)
	if err != nil {
		return models.BudgetWindow{}, fmt.Errorf("load spend: %w", err)
	}
	return st, nil
}

// Query returns spend records for a scope since a given time.
func (t *SQLiteTracker) Query(ctx context.Context, scope string, since time.Time) ([]models.SpendRecord, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, scope, amount, created_at
		 FROM spend_records WHERE scope = ? AND created_at >= ? ORDER BY created_at DESC, id DESC`,
		scope, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query spend: %w", err)
	}
	defer rows.Close()

	var records []models.SpendRecord
	for rows.Next() {
		var r models.SpendRecord
		if err := rows.Scan(&r.ID, &r.Scope, &r.Amount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan spend: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summary returns spend aggregated per scope.
func (t *SQLiteTracker) Summary(ctx context.Context, scope string) ([]models.SpendSummary, error) {
	query := `SELECT scope, COUNT(*), SUM(amount), MAX(created_at) FROM spend_records`
	var args []any
	if scope != "" {
		query += ` WHERE scope = ?`
		args = append(args, scope)
	}
	query += ` GROUP BY scope ORDER BY scope`

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.SpendSummary
	for rows.Next() {
		var s models.SpendSummary
		var last sql.NullString
		if err := rows.Scan(&s.Scope, &s.RequestCount, &s.TotalSpent, &last); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if last.Valid {
			s.LastAt = parseSQLiteTime(last.String)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close releases the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

// parseSQLiteTime reads the text form of an aggregated DATETIME column.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
