package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"versions/relay/internal/metrics"
)

const defaultFetchTimeout = 10 * time.Second

type LoaderOptions struct {
	// Timeout bounds every fetch. Zero means 10s.
	Timeout time.Duration
	// BatchConcurrency caps concurrent fetches in LoadMany. Zero means unbounded.
	BatchConcurrency int
	Logger           *zap.SugaredLogger
	Metrics          *metrics.Registry
}

// Loader is the cache-or-fetch read path shared by every service.
//
// A cached key is returned without I/O. A miss runs the fetch once per key
// no matter how many callers are waiting on it, stores a Success and
// never stores a Failure.
type Loader[K comparable, V any] struct {
	name     string
	store    Store[K, V]
	fallback func(K) V
	timeout  time.Duration
	batch    int
	group    singleflight.Group
	logger   *zap.SugaredLogger
	metrics  *metrics.Registry

	// generation counts Clear calls. A fetch started in an older
	// generation does not write its result back.
	clearMu    sync.RWMutex
	generation uint64
}

func NewLoader[K comparable, V any](name string, store Store[K, V], fallback func(K) V, opts LoaderOptions) *Loader[K, V] {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if fallback == nil {
		fallback = func(K) V {
			var zero V
			return zero
		}
	}
	return &Loader[K, V]{
		name:     name,
		store:    store,
		fallback: fallback,
		timeout:  opts.Timeout,
		batch:    opts.BatchConcurrency,
		logger:   opts.Logger.With("cache", name),
		metrics:  opts.Metrics,
	}
}

func (l *Loader[K, V]) Name() string { return l.name }

// Load returns the cached value for key, or fetches it. A failed fetch
// is logged and answered with the fallback value; it is never returned.
func (l *Loader[K, V]) Load(ctx context.Context, key K, fetch FetchFunc[K, V]) V {
	val, err := l.LoadResult(ctx, key, fetch)
	if err != nil {
		l.logger.Warnw("fetch failed, serving fallback", "key", key, "error", err)
		return l.fallback(key)
	}
	return val
}

// LoadResult is Load without the fallback: the failure cause is returned.
func (l *Loader[K, V]) LoadResult(ctx context.Context, key K, fetch FetchFunc[K, V]) (V, error) {
	if val, ok := l.store.Get(key); ok {
		l.metrics.RecordCacheLookup(l.name, true)
		return val, nil
	}
	l.metrics.RecordCacheLookup(l.name, false)
	return l.fetchShared(ctx, key, fetch)
}

// LoadMany returns the cached and freshly fetched values for keys.
// Uncached keys are fetched concurrently and every fetch is awaited;
// keys whose fetch failed are omitted from the result.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K, fetch FetchFunc[K, V]) map[K]V {
	result := make(map[K]V, len(keys))
	seen := make(map[K]struct{}, len(keys))
	missing := make([]K, 0, len(keys))

	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if val, ok := l.store.Get(key); ok {
			l.metrics.RecordCacheLookup(l.name, true)
			result[key] = val
			continue
		}
		l.metrics.RecordCacheLookup(l.name, false)
		missing = append(missing, key)
	}

	if len(missing) == 0 {
		return result
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if l.batch > 0 {
		g.SetLimit(l.batch)
	}
	for _, key := range missing {
		g.Go(func() error {
			val, err := l.fetchShared(ctx, key, fetch)
			if err != nil {
				l.logger.Warnw("batch fetch failed, omitting key", "key", key, "error", err)
				return nil
			}
			mu.Lock()
			result[key] = val
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// Peek returns the cached value without fetching.
func (l *Loader[K, V]) Peek(key K) (V, bool) {
	return l.store.Get(key)
}

// Prime stores a value obtained outside the read path, such as the
// storage descriptor returned by an upload.
func (l *Loader[K, V]) Prime(key K, val V) {
	l.store.Set(key, val)
}

func (l *Loader[K, V]) Has(key K) bool {
	return l.store.Has(key)
}

// Clear empties the cache. Fetches already in flight still answer their
// callers but no longer populate the cache.
func (l *Loader[K, V]) Clear() {
	l.clearMu.Lock()
	l.generation++
	l.store.Clear()
	l.clearMu.Unlock()
	l.metrics.SetCacheEntries(l.name, 0)
	l.logger.Infow("cache cleared")
}

func (l *Loader[K, V]) Size() int {
	n := l.store.Size()
	l.metrics.SetCacheEntries(l.name, n)
	return n
}

// Fallback exposes the value Load substitutes on failure.
func (l *Loader[K, V]) Fallback(key K) V {
	return l.fallback(key)
}

// fetchShared runs fetch for key, sharing one in-flight call among all
// concurrent callers. The fetch itself is detached from the first
// caller's cancellation so a joiner is not failed by someone else's
// context; each caller still stops waiting when its own ctx ends.
func (l *Loader[K, V]) fetchShared(ctx context.Context, key K, fetch FetchFunc[K, V]) (V, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	l.clearMu.RLock()
	gen := l.generation
	l.clearMu.RUnlock()
	// Callers arriving after a Clear start their own flight.
	flightKey := fmt.Sprintf("%d/%v", gen, key)

	ch := l.group.DoChan(flightKey, func() (any, error) {
		// Another flight may have stored the key since our miss.
		if val, ok := l.store.Get(key); ok {
			return val, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		start := time.Now()
		res := fetch(fetchCtx, key)
		if !res.Ok() && fetchCtx.Err() == context.DeadlineExceeded {
			res = Failure[V](fmt.Errorf("%s fetch for %v timed out after %s: %w", l.name, key, l.timeout, res.Err()))
		}

		outcome := "success"
		if !res.Ok() {
			outcome = "failure"
		}
		l.metrics.RecordFetch(l.name, outcome, time.Since(start).Seconds())

		val, err := res.Unwrap()
		if err != nil {
			return nil, err
		}
		if !l.storeIfCurrent(gen, key, val) {
			l.logger.Debugw("cache cleared during fetch, not storing", "key", key)
		}
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Shared {
			l.metrics.RecordCoalesced(l.name)
		}
		if r.Err != nil {
			return zero, r.Err
		}
		val, ok := r.Val.(V)
		if !ok {
			return zero, fmt.Errorf("%s: unexpected cached type %T", l.name, r.Val)
		}
		return val, nil
	}
}

func (l *Loader[K, V]) storeIfCurrent(gen uint64, key K, val V) bool {
	l.clearMu.RLock()
	defer l.clearMu.RUnlock()
	if gen != l.generation {
		return false
	}
	l.store.Set(key, val)
	return true
}
