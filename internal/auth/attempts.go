package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limits はログイン試行の制限値です。
type Limits struct {
	MaxAttempts int
	Window      time.Duration
	Lock        time.Duration
}

// DefaultLimits は 15 分間に 5 回失敗すると 10 分間ロックします。
var DefaultLimits = Limits{
	MaxAttempts: 5,
	Window:      15 * time.Minute,
	Lock:        10 * time.Minute,
}

// AttemptStore はクライアントごとのログイン失敗回数を保持します。
type AttemptStore interface {
	// Locked はロック中であれば残り時間を返します。
	Locked(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を記録し、ロックまでの残り回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

type attemptState struct {
	Count        int       `json:"count"`
	FirstAttempt time.Time `json:"firstAttempt"`
	LockedUntil  time.Time `json:"lockedUntil"`
}

func (s *attemptState) lockRemaining(now time.Time) time.Duration {
	if s == nil || !now.Before(s.LockedUntil) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// fail は失敗を1回加算した状態を返します。ウィンドウ経過後やロック明けは数え直します。
func (s *attemptState) fail(now time.Time, limits Limits) (*attemptState, int) {
	next := &attemptState{FirstAttempt: now}
	if s != nil && s.LockedUntil.IsZero() && now.Sub(s.FirstAttempt) <= limits.Window {
		*next = *s
	}

	next.Count++
	if next.Count >= limits.MaxAttempts {
		next.LockedUntil = now.Add(limits.Lock)
		next.Count = limits.MaxAttempts
	}

	remaining := limits.MaxAttempts - next.Count
	if remaining < 0 {
		remaining = 0
	}
	return next, remaining
}

// MemoryAttempts はプロセス内で失敗回数を保持します。
type MemoryAttempts struct {
	limits   Limits
	now      func() time.Time
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryAttempts は MemoryAttempts を作成します。
func NewMemoryAttempts(limits Limits) *MemoryAttempts {
	return &MemoryAttempts{
		limits:   limits,
		now:      time.Now,
		attempts: make(map[string]*attemptState),
	}
}

// Locked implements AttemptStore.
func (m *MemoryAttempts) Locked(_ context.Context, key string) (time.Duration, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.attempts[key].lockRemaining(m.now()), nil
}

// RecordFailure implements AttemptStore.
func (m *MemoryAttempts) RecordFailure(_ context.Context, key string) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, remaining := m.attempts[key].fail(m.now(), m.limits)
	m.attempts[key] = state
	return remaining, nil
}

// Reset implements AttemptStore.
func (m *MemoryAttempts) Reset(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, key)
	return nil
}

const attemptKeyPrefix = "biblioteca:login_attempt:"

// RedisAttempts は失敗回数を Redis に保存します。複数インスタンスで共有できます。
type RedisAttempts struct {
	rdb    *redis.Client
	limits Limits
	now    func() time.Time
}

// NewRedisAttempts は RedisAttempts を作成します。
func NewRedisAttempts(rdb *redis.Client, limits Limits) *RedisAttempts {
	return &RedisAttempts{rdb: rdb, limits: limits, now: time.Now}
}

// Locked implements AttemptStore.
func (r *RedisAttempts) Locked(ctx context.Context, key string) (time.Duration, error) {
	state, err := r.get(ctx, r.rdb, key)
	if err != nil {
		return 0, err
	}
	return state.lockRemaining(r.now()), nil
}

// RecordFailure implements AttemptStore.
func (r *RedisAttempts) RecordFailure(ctx context.Context, key string) (int, error) {
	redisKey := attemptKey(key)
	var remaining int

	for {
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			state, err := r.get(ctx, tx, key)
			if err != nil {
				return err
			}
			var next *attemptState
			next, remaining = state.fail(r.now(), r.limits)
			payload, err := json.Marshal(next)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, redisKey, payload, r.limits.Window+r.limits.Lock)
				return nil
			})
			return err
		}, redisKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to record login failure: %w", err)
		}
		return remaining, nil
	}
}

// Reset implements AttemptStore.
func (r *RedisAttempts) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, attemptKey(key)).Err()
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisAttempts) get(ctx context.Context, cmd stringGetter, key string) (*attemptState, error) {
	data, err := cmd.Get(ctx, attemptKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var state attemptState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func attemptKey(key string) string {
	return attemptKeyPrefix + key
}
