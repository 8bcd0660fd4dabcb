// Package session persists dashboard state in Redis so that sessions
// survive restarts and can be shared by several server instances.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/weather-dashboard/internal/dashboard"
)

// KeyPrefix prefixes every session key.
const KeyPrefix = "dashboard:session:"

const maxUpdateAttempts = 10

// ErrConflict is returned when an update keeps losing optimistic
// transactions to concurrent writers.
var ErrConflict = errors.New("session updated concurrently too many times")

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisStore is a dashboard.Store backed by Redis. Each session is one JSON
// value whose expiry is refreshed on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore with the given idle ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(session string) string {
	return KeyPrefix + session
}

// Load returns the session state, or a zero State for unknown sessions.
func (r *RedisStore) Load(ctx context.Context, session string) (dashboard.State, error) {
	return read(ctx, r.client, session)
}

// Update runs fn inside a WATCH/MULTI transaction and retries when another
// writer changed the session first. fn may therefore run more than once.
func (r *RedisStore) Update(ctx context.Context, session string, fn func(*dashboard.State) error) (dashboard.State, error) {
	k := key(session)

	var (
		current dashboard.State
		fnErr   error
	)
	txf := func(tx *redis.Tx) error {
		fnErr = nil
		s, err := read(ctx, tx, session)
		if err != nil {
			return err
		}
		current = s

		if fnErr = fn(&s); fnErr != nil {
			return fnErr
		}

		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshaling session %s: %w", session, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, b, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		current = s
		return nil
	}

	for range maxUpdateAttempts {
		err := r.client.Watch(ctx, txf, k)
		switch {
		case err == nil:
			return current, nil
		case fnErr != nil:
			return current, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return dashboard.State{}, fmt.Errorf("updating session %s: %w", session, err)
		}
	}

	return dashboard.State{}, fmt.Errorf("updating session %s: %w", session, ErrConflict)
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func read(ctx context.Context, c getter, session string) (dashboard.State, error) {
	val, err := c.Get(ctx, key(session)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return dashboard.State{}, nil
		}
		return dashboard.State{}, fmt.Errorf("reading session %s: %w", session, err)
	}

	var s dashboard.State
	if err := json.Unmarshal(val, &s); err != nil {
		return dashboard.State{}, fmt.Errorf("unmarshaling session %s: %w", session, err)
	}
	return s, nil
}
