package budget

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/namegen/pkg/models"
)

func TestParseRedisFloat(t *testing.T) {
	v, err := parseRedisFloat(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = parseRedisFloat("0.125")
	require.NoError(t, err)
	assert.Equal(t, 0.125, v)

	_, err = parseRedisFloat("abc")
	assert.Error(t, err)

	_, err = parseRedisFloat(42)
	assert.Error(t, err)
}

func TestRedisKeys(t *testing.T) {
	s := NewRedisStore(nil, "")
	w := WindowAt(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), time.UTC)
	day, month, count := s.keys("user-1", w)
	assert.Equal(t, "namegen:budget:user-1:day:2026-03-14", day)
	assert.Equal(t, "namegen:budget:user-1:month:2026-03", month)
	assert.Equal(t, "namegen:budget:user-1:count", count)
}

// TestRedisStoreLedger runs against a live server when NAMEGEN_TEST_REDIS_ADDR is set.
func TestRedisStoreLedger(t *testing.T) {
	addr := os.Getenv("NAMEGEN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NAMEGEN_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "namegen-test:" + uuid.NewString()
	l := New(models.BudgetLimits{Daily: 1, Monthly: 10}, NewRedisStore(client, prefix))

	l.Record(ctx, "user-1", 0.6)
	require.NoError(t, l.Check(ctx, "user-1"))
	l.Record(ctx, "user-1", 0.6)
	assert.ErrorIs(t, l.Check(ctx, "user-1"), ErrBudgetExceeded)

	stats, err := l.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, stats.DailySpent, 1e-9)
	assert.Equal(t, int64(2), stats.RequestCount)
}
