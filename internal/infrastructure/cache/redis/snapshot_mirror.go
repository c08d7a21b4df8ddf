package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/redis/go-redis/v9"
)

const latestKey = "diagnostics:latest"

// SnapshotMirror keeps the latest evaluated snapshot in Redis so that other
// processes (sibling instances, external dashboards) can read it without
// hitting this service. It mirrors the in-process cache; the in-process cache
// stays authoritative and a Redis outage never fails a cycle.
type SnapshotMirror struct {
	client *redis.Client
	ttl    time.Duration
}

type Options struct {
	Host         string
	Port         string
	Password     string
	DB           int
	TTL          time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewSnapshotMirror(opts Options) (*SnapshotMirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		MaxRetries:   3,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &SnapshotMirror{
		client: client,
		ttl:    ttl,
	}, nil
}

// Publish stores the latest snapshot under a fixed key with TTL. The TTL
// makes stale data self-expiring if the service stops publishing.
func (m *SnapshotMirror) Publish(ctx context.Context, snapshot *dto.DiagnosticsDTO) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := m.client.Set(ctx, latestKey, data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mirror snapshot: %w", err)
	}
	return nil
}

// Latest reads the mirrored snapshot back. Returns ok=false on a cache miss.
func (m *SnapshotMirror) Latest(ctx context.Context) (*dto.DiagnosticsDTO, bool, error) {
	val, err := m.client.Get(ctx, latestKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read mirror: %w", err)
	}

	var snapshot dto.DiagnosticsDTO
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal mirrored snapshot: %w", err)
	}
	return &snapshot, true, nil
}

// Close closes the Redis connection
func (m *SnapshotMirror) Close() error {
	return m.client.Close()
}
