// Package cache provides a generic size and age bounded cache and a manager
// that sweeps expired entries in the background.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache.
type Manager struct {
	caches []named
	logger *slog.Logger
}

type named struct {
	name  string
	cache Cleaner
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With("component", "cache")}
}

// Register adds a cache to the sweep. It must be called before Run.
func (m *Manager) Register(name string, c Cleaner) {
	m.caches = append(m.caches, named{name: name, cache: c})
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep cleans every registered cache once and returns the total removed.
func (m *Manager) Sweep(ctx context.Context) int {
	total := 0
	for _, c := range m.caches {
		if n := c.cache.CleanExpired(); n > 0 {
			m.logger.DebugContext(ctx, "Expired cache entries removed", "cache", c.name, "removed", n)
			total += n
		}
	}
	return total
}
