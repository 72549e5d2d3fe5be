// Package audit persists generation events, including degradations and
// budget rejections, to a dedicated SQLite database.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pario-ai/namegen/pkg/models"
)

// Logger writes and queries generation events.
type Logger struct {
	db     *sql.DB
	cfg    models.AuditConfig
	logger *zap.Logger
	done   chan struct{}
	wg     sync.WaitGroup
}

// New opens the event database, creates the schema and starts the retention loop.
func New(cfg models.AuditConfig, logger *zap.Logger) (*Logger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", cfg.DBPath+"?_time_format=sqlite&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	l := &Logger{
		db:     db,
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.retentionLoop()

	return l, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS generation_events (
		request_id    TEXT PRIMARY KEY,
		scope_hash    TEXT NOT NULL,
		scope_prefix  TEXT NOT NULL,
		outcome       TEXT NOT NULL,
		cause         TEXT,
		model         TEXT,
		style         TEXT,
		name_count    INTEGER,
		input_tokens  INTEGER,
		output_tokens INTEGER,
		cost          REAL,
		latency_ms    INTEGER,
		created_at    DATETIME NOT NULL
	)`)
	if err != nil {
		return err
	}
	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_events_outcome ON generation_events(outcome)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON generation_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_prefix ON generation_events(scope_prefix)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

// Log stores ev. The raw scope is replaced by its hash and prefix.
// A nil Logger discards events.
func (l *Logger) Log(ctx context.Context, ev models.GenerationEvent) error {
	if l == nil || l.db == nil {
		return nil
	}
	if ev.Scope != "" {
		ev.ScopeHash, ev.ScopePrefix = HashScope(ev.Scope)
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO generation_events
		(request_id, scope_hash, scope_prefix, outcome, cause, model, style,
		 name_count, input_tokens, output_tokens, cost, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RequestID, ev.ScopeHash, ev.ScopePrefix, string(ev.Outcome), ev.Cause,
		ev.Model, string(ev.Style), ev.NameCount, ev.InputTokens, ev.OutputTokens,
		ev.Cost, ev.LatencyMs, ev.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// Query returns events matching opts, newest first.
func (l *Logger) Query(ctx context.Context, opts models.EventQueryOpts) ([]models.GenerationEvent, error) {
	q := `SELECT request_id, scope_hash, scope_prefix, outcome, cause, model, style,
		name_count, input_tokens, output_tokens, cost, latency_ms, created_at
		FROM generation_events WHERE 1=1`
	var args []any

	if opts.RequestID != "" {
		q += " AND request_id = ?"
		args = append(args, opts.RequestID)
	}
	if opts.Outcome != "" {
		q += " AND outcome = ?"
		args = append(args, string(opts.Outcome))
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since.UTC())
	}
	if opts.ScopePrefix != "" {
		q += " AND scope_prefix = ?"
		args = append(args, opts.ScopePrefix)
	}

	q += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []models.GenerationEvent
	for rows.Next() {
		var ev models.GenerationEvent
		var outcome, style string
		var cause, model sql.NullString
		if err := rows.Scan(
			&ev.RequestID, &ev.ScopeHash, &ev.ScopePrefix, &outcome, &cause, &model, &style,
			&ev.NameCount, &ev.InputTokens, &ev.OutputTokens, &ev.Cost, &ev.LatencyMs, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Outcome = models.Outcome(outcome)
		ev.Style = models.Style(style)
		ev.Cause = cause.String
		ev.Model = model.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Stats returns event counts grouped by outcome and day.
func (l *Logger) Stats(ctx context.Context) ([]models.EventStat, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT outcome, substr(created_at, 1, 10) AS day, count(*) AS cnt
		 FROM generation_events GROUP BY outcome, day ORDER BY day DESC, outcome`)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	defer rows.Close()

	var stats []models.EventStat
	for rows.Next() {
		var s models.EventStat
		var outcome string
		var day sql.NullString
		if err := rows.Scan(&outcome, &day, &s.Count); err != nil {
			return nil, fmt.Errorf("scan event stat: %w", err)
		}
		s.Outcome = models.Outcome(outcome)
		s.Day = day.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes events older than the retention period.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	if l.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -l.cfg.RetentionDays).UTC()
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM generation_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("event cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			n, err := l.Cleanup(context.Background())
			if err != nil {
				l.logger.Warn("event retention failed", zap.Error(err))
			} else if n > 0 {
				l.logger.Debug("expired events removed", zap.Int64("count", n))
			}
		}
	}
}

// HashScope returns the SHA-256 hex hash and 8-char prefix for a caller scope.
func HashScope(scope string) (hash, prefix string) {
	h := sha256.Sum256([]byte(scope))
	hash = hex.EncodeToString(h[:])
	prefix = hash[:8]
	return hash, prefix
}
