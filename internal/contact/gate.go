// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package contact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Gate tracks which browsers have a submission in progress.
type Gate interface {
	// Acquire marks key as in progress for at most hold (plus a grace
	// period) and reports whether it was free.
	Acquire(ctx context.Context, key string, hold time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Busy(ctx context.Context, key string) (bool, error)
}

// gateGrace is added to the hold time so a crashed process never leaves a
// key stuck in Valkey.
const gateGrace = 30 * time.Second

// MemoryGate is a process-local Gate.
type MemoryGate struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryGate creates an empty in-memory gate.
func NewMemoryGate() *MemoryGate {
	return &MemoryGate{keys: make(map[string]struct{})}
}

func (g *MemoryGate) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return false, nil
	}
	g.keys[key] = struct{}{}
	return true, nil
}

func (g *MemoryGate) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

func (g *MemoryGate) Busy(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.keys[key]
	return busy, nil
}

// gateKeyPrefix namespaces in-flight keys in Valkey.
const gateKeyPrefix = "inflight:"

// ValkeyGate is a Gate shared by every server instance using the same Valkey.
type ValkeyGate struct {
	client *redis.Client
}

// NewValkeyGate creates a gate backed by the given Valkey client.
func NewValkeyGate(client *redis.Client) *ValkeyGate {
	return &ValkeyGate{client: client}
}

func (g *ValkeyGate) Acquire(ctx context.Context, key string, hold time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, gateKeyPrefix+key, 1, hold+gateGrace).Result()
	if err != nil {
		return false, fmt.Errorf("gate acquire: %w", err)
	}
	return ok, nil
}

func (g *ValkeyGate) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, gateKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("gate release: %w", err)
	}
	return nil
}

func (g *ValkeyGate) Busy(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, gateKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("gate busy: %w", err)
	}
	return n > 0, nil
}
