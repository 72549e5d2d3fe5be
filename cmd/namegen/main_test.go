package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/namegen/pkg/models"
)

func TestReadRequestsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	data := `
- seed: John
  gender: male
  style: modern
- seed: Anna
  gender: female
  style: nature
  preferences:
    preferred_elements: [water, moon]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reqs, err := readRequests(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, models.StyleModern, reqs[0].Style)
	require.NotNil(t, reqs[1].Preferences)
	assert.Equal(t, []string{"water", "moon"}, reqs[1].Preferences.PreferredElements)
}

func TestReadRequestsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	data := `[{"seed":"John","gender":"male","style":"modern","preferences":{"avoidWords":["死"]}}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reqs, err := readRequests(path)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"死"}, reqs[0].Preferences.AvoidWords)
}

func TestReadRequestsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	_, err := readRequests(path)
	assert.Error(t, err)
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("NAMEGEN_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := loadConfig(defaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Provider.APIKey)
	assert.Equal(t, 80.0, cfg.Budget.Daily)

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "explicit config paths must exist")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NAMEGEN_TEST_DOTENV=loaded\n"), 0o644))
	t.Setenv("NAMEGEN_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("NAMEGEN_TEST_DOTENV"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("NAMEGEN_TEST_DOTENV"))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}

func TestFormatEvents(t *testing.T) {
	out := formatEvents([]models.GenerationEvent{{
		RequestID: "gen_1", ScopePrefix: "abcd1234", Outcome: models.OutcomeDegraded,
		Cause: "timeout", Style: models.StyleModern, NameCount: 3, CreatedAt: time.Now(),
	}})
	assert.True(t, strings.Contains(out, "gen_1") && strings.Contains(out, "timeout"))
	assert.Equal(t, "No events found.\n", formatEvents(nil))
}

func TestBatchRejected(t *testing.T) {
	tooMany := &models.ValidationError{Field: "requests", Rule: "max", Message: "requests must have at most 10 entries"}
	assert.Equal(t, tooMany, batchRejected(tooMany))
	var vErr *models.ValidationError
	assert.ErrorAs(t, batchRejected(fmt.Errorf("batch: %w", tooMany)), &vErr)
	assert.NoError(t, batchRejected(context.Canceled), "a cancelled batch keeps its partial results")
	assert.NoError(t, batchRejected(nil))
}
