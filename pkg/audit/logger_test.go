package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pario-ai/namegen/pkg/models"
)

func tempCfg(t *testing.T) models.AuditConfig {
	t.Helper()
	return models.AuditConfig{
		Enabled:       true,
		DBPath:        filepath.Join(t.TempDir(), "events_test.db"),
		RetentionDays: 30,
	}
}

func mustNew(t *testing.T, cfg models.AuditConfig) *Logger {
	t.Helper()
	l, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func sampleEvent() models.GenerationEvent {
	return models.GenerationEvent{
		RequestID:    "gen_001",
		Scope:        "user-1",
		Outcome:      models.OutcomeGenerated,
		Model:        "gpt-4o-mini",
		Style:        models.StyleModern,
		NameCount:    3,
		InputTokens:  120,
		OutputTokens: 340,
		Cost:         0.001,
		LatencyMs:    850,
		CreatedAt:    time.Now(),
	}
}

func TestLogAndQuery(t *testing.T) {
	l := mustNew(t, tempCfg(t))
	ctx := context.Background()

	if err := l.Log(ctx, sampleEvent()); err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := l.Query(ctx, models.EventQueryOpts{Outcome: models.OutcomeGenerated})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.RequestID != "gen_001" {
		t.Errorf("expected gen_001, got %s", ev.RequestID)
	}
	if ev.Style != models.StyleModern || ev.NameCount != 3 || ev.OutputTokens != 340 {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Scope != "" {
		t.Errorf("raw scope must not be stored, got %q", ev.Scope)
	}
	hash, prefix := HashScope("user-1")
	if ev.ScopeHash != hash || ev.ScopePrefix != prefix {
		t.Errorf("scope not hashed: %s %s", ev.ScopeHash, ev.ScopePrefix)
	}
}

func TestQueryFilters(t *testing.T) {
	l := mustNew(t, tempCfg(t))
	ctx := context.Background()

	_ = l.Log(ctx, sampleEvent())
	degraded := sampleEvent()
	degraded.RequestID = "gen_002"
	degraded.Scope = "user-2"
	degraded.Outcome = models.OutcomeDegraded
	degraded.Cause = "timeout"
	_ = l.Log(ctx, degraded)

	events, err := l.Query(ctx, models.EventQueryOpts{Outcome: models.OutcomeDegraded})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 || events[0].Cause != "timeout" {
		t.Fatalf("expected one degraded event with cause, got %+v", events)
	}

	_, prefix := HashScope("user-2")
	events, err = l.Query(ctx, models.EventQueryOpts{ScopePrefix: prefix})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 || events[0].RequestID != "gen_002" {
		t.Errorf("expected gen_002 for scope prefix, got %+v", events)
	}

	events, err = l.Query(ctx, models.EventQueryOpts{RequestID: "gen_001"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 by request id, got %d", len(events))
	}

	events, err = l.Query(ctx, models.EventQueryOpts{Since: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no future events, got %d", len(events))
	}

	events, err = l.Query(ctx, models.EventQueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected limit 1, got %d", len(events))
	}
}

func TestCleanup(t *testing.T) {
	cfg := tempCfg(t)
	cfg.RetentionDays = 1
	l := mustNew(t, cfg)
	ctx := context.Background()

	old := sampleEvent()
	old.CreatedAt = time.Now().AddDate(0, 0, -2)
	_ = l.Log(ctx, old)
	fresh := sampleEvent()
	fresh.RequestID = "gen_fresh"
	_ = l.Log(ctx, fresh)

	deleted, err := l.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
}

func TestCleanupDisabled(t *testing.T) {
	cfg := tempCfg(t)
	cfg.RetentionDays = 0
	l := mustNew(t, cfg)

	old := sampleEvent()
	old.CreatedAt = time.Now().AddDate(-1, 0, 0)
	_ = l.Log(context.Background(), old)

	deleted, err := l.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected retention disabled, got %d deleted", deleted)
	}
}

func TestStats(t *testing.T) {
	l := mustNew(t, tempCfg(t))
	ctx := context.Background()

	_ = l.Log(ctx, sampleEvent())
	e2 := sampleEvent()
	e2.RequestID = "gen_002"
	_ = l.Log(ctx, e2)
	e3 := sampleEvent()
	e3.RequestID = "gen_003"
	e3.Outcome = models.OutcomeRejected
	_ = l.Log(ctx, e3)

	stats, err := l.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	counts := make(map[models.Outcome]int)
	for _, s := range stats {
		counts[s.Outcome] += s.Count
		if len(s.Day) != 10 {
			t.Errorf("unexpected day %q", s.Day)
		}
	}
	if counts[models.OutcomeGenerated] != 2 || counts[models.OutcomeRejected] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestHashScope(t *testing.T) {
	hash, prefix := HashScope("user-1")
	if len(hash) != 64 {
		t.Errorf("expected 64-char hash, got %d", len(hash))
	}
	if prefix != hash[:8] {
		t.Errorf("expected prefix of hash, got %s", prefix)
	}
	if h2, _ := HashScope("user-1"); h2 != hash {
		t.Error("hash not stable")
	}
}

func TestNilLoggerSafe(t *testing.T) {
	var l *Logger
	if err := l.Log(context.Background(), sampleEvent()); err != nil {
		t.Errorf("nil logger should be safe: %v", err)
	}
}

func TestNewInvalidPath(t *testing.T) {
	cfg := models.AuditConfig{
		Enabled: true,
		DBPath:  filepath.Join(os.TempDir(), "nonexistent", "deep", "path", "events.db"),
	}
	_, err := New(cfg, nil)
	if err == nil {
		t.Error("expected error for invalid path")
	}
}
