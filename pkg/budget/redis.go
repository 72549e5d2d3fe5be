package budget

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pario-ai/namegen/pkg/models"
)

const (
	dayKeyTTL   = 48 * time.Hour
	monthKeyTTL = 32 * 24 * time.Hour
)

// RedisStore keeps accumulators in Redis so several instances share one
// budget. Counters are keyed on (scope, day) and (scope, month) and expire
// after their window has passed.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "namegen:budget".
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "namegen:budget"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) keys(scope string, w Window) (day, month, count string) {
	base := s.prefix + ":" + scope
	return base + ":day:" + w.Day, base + ":month:" + w.Month, base + ":count"
}

// Add implements Store using one MULTI/EXEC transaction.
func (s *RedisStore) Add(ctx context.Context, scope string, w Window, amount float64) error {
	dayKey, monthKey, countKey := s.keys(scope, w)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrByFloat(ctx, dayKey, amount)
		pipe.Expire(ctx, dayKey, dayKeyTTL)
		pipe.IncrByFloat(ctx, monthKey, amount)
		pipe.Expire(ctx, monthKey, monthKeyTTL)
		pipe.Incr(ctx, countKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis add spend: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, scope string, w Window) (models.BudgetWindow, error) {
	dayKey, monthKey, countKey := s.keys(scope, w)

	vals, err := s.client.MGet(ctx, dayKey, monthKey, countKey).Result()
	if err != nil {
		return models.BudgetWindow{}, fmt.Errorf("redis load spend: %w", err)
	}

	st := models.BudgetWindow{Day: w.Day, Month: w.Month}
	if st.DailySpent, err = parseRedisFloat(vals[0]); err != nil {
		return models.BudgetWindow{}, err
	}
	if st.MonthlySpent, err = parseRedisFloat(vals[1]); err != nil {
		return models.BudgetWindow{}, err
	}
	count, err := parseRedisFloat(vals[2])
	if err != nil {
		return models.BudgetWindow{}, err
	}
	st.RequestCount = int64(count)
	return st, nil
}

// parseRedisFloat converts an MGET slot; a missing key reads as zero.
func parseRedisFloat(v any) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("parse redis counter %q: %w", val, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected redis value type %T", v)
	}
}
