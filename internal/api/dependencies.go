package api

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"versions/relay/internal/common"
	"versions/relay/internal/config"
	"versions/relay/internal/constants"
	"versions/relay/internal/db/repositories"
	"versions/relay/internal/metrics"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/providers"
	"versions/relay/internal/services"
)

type Repositories struct {
	Activity *repositories.ActivityRepository
}

type Services struct {
	Audio   *services.AudioService
	Social  *services.SocialService
	Storage *services.StorageService
}

type Dependencies struct {
	Config   *config.Config
	Metrics  *metrics.Registry
	DB       *gorm.DB
	Repo     *Repositories
	Services *Services
	// Caches lists every loader for diagnostics and the clear endpoint.
	Caches []common.CacheHandle
	Logger *zap.SugaredLogger
}

// InitDependencies wires providers, stores and services. redisClient may
// be nil, in which case every cache uses the memory backend.
func InitDependencies(ctx context.Context, cfg *config.Config, gdb *gorm.DB, redisClient *redis.Client, reg *metrics.Registry, logger *zap.SugaredLogger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var limiter *rate.Limiter
	if cfg.Upstream.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Upstream.RateLimitRPS), max(1, int(cfg.Upstream.RateLimitRPS)))
	}
	api := providers.NewVersionsAPIProvider(cfg.Upstream.BaseURL, cfg.Upstream.FetchTimeout, limiter)
	if !cfg.IsProduction() {
		api.Client.Transport = common.NewDumpTransport(api.Client.Transport, logger.Named("upstream"))
	}

	probeClient := &http.Client{Timeout: cfg.Upstream.FetchTimeout}
	socialClient := providers.ProbeSocialClient(ctx, cfg.Social.HubURL, probeClient, logger)
	paymentClient := providers.ProbePaymentClient(ctx, cfg.Payments.RPCURL, probeClient, logger)

	repos := &Repositories{}
	var recorder services.ActivityRecorder
	if gdb != nil {
		repos.Activity = repositories.NewActivityRepository(gdb)
		recorder = repos.Activity
	}

	loaderOpts := common.LoaderOptions{
		Timeout:          cfg.Upstream.FetchTimeout,
		BatchConcurrency: cfg.Cache.BatchConcurrency,
		Logger:           logger,
		Metrics:          reg,
	}
	stores := storeFactory{backend: cfg.Cache.Backend, redis: redisClient, logger: logger}

	svcs := &Services{
		Audio: services.NewAudioService(api,
			newStore[string, *dtos.AudioMetadata](stores, constants.CacheAudioMetadata), loaderOpts),
		Social: services.NewSocialService(services.SocialServiceConfig{
			API:          api,
			Client:       socialClient,
			HubURL:       cfg.Social.HubURL,
			Store:        newStore[uint64, *dtos.FarcasterUser](stores, constants.CacheSocialProfiles),
			PublicOrigin: cfg.Upstream.PublicOrigin,
			Activity:     recorder,
			Metrics:      reg,
			Loader:       loaderOpts,
		}),
		Storage: services.NewStorageService(services.StorageServiceConfig{
			API:           api,
			Payments:      paymentClient,
			StorageStore:  newStore[string, *dtos.StorageInfo](stores, constants.CacheStorageInfo),
			EarningsStore: newStore[string, *dtos.CreatorEarnings](stores, constants.CacheCreatorEarnings),
			Network:       cfg.Filecoin.Network,
			CDNBase:       cfg.Filecoin.CDNBase,
			Activity:      recorder,
			Metrics:       reg,
			Loader:        loaderOpts,
		}),
	}

	var caches []common.CacheHandle
	caches = append(caches, svcs.Audio.Caches()...)
	caches = append(caches, svcs.Social.Caches()...)
	caches = append(caches, svcs.Storage.Caches()...)

	logger.Infow("dependencies initialized",
		"cache_backend", stores.effectiveBackend(),
		"social_available", socialClient.Available(),
		"payments_available", paymentClient.Available(),
		"caches", len(caches),
	)

	return &Dependencies{
		Config:   cfg,
		Metrics:  reg,
		DB:       gdb,
		Repo:     repos,
		Services: svcs,
		Caches:   caches,
		Logger:   logger,
	}, nil
}

type storeFactory struct {
	backend string
	redis   *redis.Client
	logger  *zap.SugaredLogger
}

func (f storeFactory) effectiveBackend() string {
	if f.backend == config.CacheBackendRedis && f.redis != nil {
		return config.CacheBackendRedis
	}
	return config.CacheBackendMemory
}

// newStore picks the backend for one named cache. The cache name is the
// redis namespace.
func newStore[K comparable, V any](f storeFactory, name constants.CacheName) common.Store[K, V] {
	if f.effectiveBackend() == config.CacheBackendRedis {
		return common.NewRedisStore[K, V](f.redis, string(name), f.logger)
	}
	return common.NewMemoryStore[K, V]()
}
