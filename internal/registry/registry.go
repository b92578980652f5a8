// Package registry enumerates output devices and keeps a short-lived
// snapshot cache. Each query yields a fresh immutable device list; the one
// shared mutable thing in the process is the cache slot, refreshed by a
// single writer path and read by everyone else.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
)

// Querier performs one platform device enumeration.
type Querier interface {
	Query(ctx context.Context) ([]model.Device, error)
}

// Registry caches device snapshots with a TTL.
type Registry struct {
	querier Querier
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger

	mu         sync.RWMutex
	snapshot   []model.Device
	capturedAt time.Time
}

// New builds a registry with an empty cache. The first snapshot comes from
// an explicit Preload or lazily from the first CachedOrFresh call.
func New(querier Querier, ttl time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		querier: querier,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// ListDevices runs a fresh enumeration without touching the cache.
// An enumeration failure wraps model.ErrDeviceQuery; callers treat it as
// "no devices found", never as fatal.
func (r *Registry) ListDevices(ctx context.Context) ([]model.Device, error) {
	devices, err := r.querier.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDeviceQuery, err)
	}
	return devices, nil
}

// Refresh forces a new query and replaces the cache slot atomically.
func (r *Registry) Refresh(ctx context.Context) ([]model.Device, error) {
	devices, err := r.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.snapshot = devices
	r.capturedAt = r.now()
	r.mu.Unlock()
	r.log.Debug("device cache refreshed", zap.Int("devices", len(devices)))
	return devices, nil
}

// CachedOrFresh returns the cached snapshot while it is younger than the
// TTL, otherwise refreshes. A snapshot captured at the zero time counts as
// expired, so the first call populates the cache.
func (r *Registry) CachedOrFresh(ctx context.Context) ([]model.Device, error) {
	r.mu.RLock()
	snapshot, capturedAt := r.snapshot, r.capturedAt
	r.mu.RUnlock()

	if !capturedAt.IsZero() && r.now().Sub(capturedAt) < r.ttl {
		return snapshot, nil
	}
	return r.Refresh(ctx)
}

// Preload fills the cache once at startup. Failure is logged, not returned:
// the process still serves, and dispatch falls back to lazy refresh.
func (r *Registry) Preload(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil {
		r.log.Warn("device preload failed", zap.Error(err))
	}
}
