package services

import (
	"context"

	"go.uber.org/zap"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/providers"
)

// AudioService serves track metadata through the metadata cache
type AudioService struct {
	api      providers.AudioAPI
	metadata *common.Loader[string, *dtos.AudioMetadata]
	logger   *zap.SugaredLogger
}

func NewAudioService(api providers.AudioAPI, store common.Store[string, *dtos.AudioMetadata], opts common.LoaderOptions) *AudioService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &AudioService{
		api:      api,
		metadata: common.NewLoader(string(constants.CacheAudioMetadata), store, FallbackAudioMetadata, opts),
		logger:   opts.Logger.Named("audio"),
	}
}

// FallbackAudioMetadata is served when metadata cannot be fetched.
func FallbackAudioMetadata(fileID string) *dtos.AudioMetadata {
	return &dtos.AudioMetadata{
		Title:  fileID,
		Artist: constants.UnknownArtist,
	}
}

// Metadata returns the cached metadata for fileID, fetching on a miss.
// It never fails: an unreachable backend yields the fallback record.
func (s *AudioService) Metadata(ctx context.Context, fileID string) *dtos.AudioMetadata {
	return s.metadata.Load(ctx, fileID, s.fetchMetadata)
}

// MetadataMany loads several tracks at once. Tracks whose fetch failed
// are absent from the result.
func (s *AudioService) MetadataMany(ctx context.Context, fileIDs []string) map[string]*dtos.AudioMetadata {
	return s.metadata.LoadMany(ctx, fileIDs, s.fetchMetadata)
}

func (s *AudioService) fetchMetadata(ctx context.Context, fileID string) common.FetchResult[*dtos.AudioMetadata] {
	return s.api.GetAudioMetadata(ctx, fileID)
}

func (s *AudioService) ListFiles(ctx context.Context) []string {
	files, err := s.api.ListAudioFiles(ctx).Unwrap()
	if err != nil {
		s.logger.Warnw("failed to list audio files", "error", err)
		return []string{}
	}
	return files
}

func (s *AudioService) StreamURL(fileID string) string {
	return s.api.AudioStreamURL(fileID)
}

func (s *AudioService) Caches() []common.CacheHandle {
	return []common.CacheHandle{s.metadata}
}
