package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"versions/relay/internal/common"
)

// CacheMonitor periodically logs cache sizes. Reading Size also
// refreshes the cache entry gauges.
type CacheMonitor struct {
	caches []common.CacheHandle
	logger *zap.SugaredLogger
}

func NewCacheMonitor(caches []common.CacheHandle, logger *zap.SugaredLogger) *CacheMonitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CacheMonitor{caches: caches, logger: logger.Named("cache_monitor")}
}

func (m *CacheMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check returns the current size of every cache by name.
func (m *CacheMonitor) Check() map[string]int {
	sizes := make(map[string]int, len(m.caches))
	for _, c := range m.caches {
		sizes[c.Name()] = c.Size()
	}
	m.logger.Debugw("cache sizes", "sizes", sizes)
	return sizes
}
