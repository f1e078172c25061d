package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"versions/relay/internal/common"
)

const cacheMonitorInterval = time.Minute

type WorkersContainer struct {
	CacheFiller  *MetaCacheWorker
	CacheMonitor *CacheMonitor
}

// InitWorkers starts the background workers. A zero warmupInterval
// disables the metadata warm-up.
func InitWorkers(
	ctx context.Context,
	metadata MetadataSource,
	caches []common.CacheHandle,
	warmupInterval time.Duration,
	logger *zap.SugaredLogger,
) *WorkersContainer {
	container := &WorkersContainer{
		CacheMonitor: NewCacheMonitor(caches, logger),
	}
	go container.CacheMonitor.Start(ctx, cacheMonitorInterval)

	if warmupInterval > 0 {
		container.CacheFiller = NewMetaCacheWorker(metadata, warmupInterval, logger)
		go container.CacheFiller.Start(ctx)
	}

	return container
}
