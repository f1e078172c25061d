package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"versions/relay/internal/models/dtos"
)

// MetadataSource is the slice of the audio service the warmer drives.
type MetadataSource interface {
	ListFiles(ctx context.Context) []string
	MetadataMany(ctx context.Context, fileIDs []string) map[string]*dtos.AudioMetadata
}

// MetaCacheWorker preloads audio metadata so first plays hit the cache.
type MetaCacheWorker struct {
	source   MetadataSource
	interval time.Duration
	logger   *zap.SugaredLogger
}

func NewMetaCacheWorker(source MetadataSource, interval time.Duration, logger *zap.SugaredLogger) *MetaCacheWorker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &MetaCacheWorker{
		source:   source,
		interval: interval,
		logger:   logger.Named("meta_cache_worker"),
	}
}

// Start warms once, then on every tick until ctx ends.
func (w *MetaCacheWorker) Start(ctx context.Context) {
	w.logger.Infow("starting metadata warm-up", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Warm(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Infow("metadata warm-up stopped")
			return
		case <-ticker.C:
			w.Warm(ctx)
		}
	}
}

// Warm lists the audio files and loads their metadata. It returns the
// number of files now cached.
func (w *MetaCacheWorker) Warm(ctx context.Context) int {
	files := w.source.ListFiles(ctx)
	if len(files) == 0 {
		return 0
	}

	start := time.Now()
	loaded := w.source.MetadataMany(ctx, files)
	w.logger.Infow("metadata warm-up complete",
		"files", len(files),
		"cached", len(loaded),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return len(loaded)
}
