package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/metrics"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/providers"
)

// SocialService serves Farcaster profiles and publishes version casts
type SocialService struct {
	api      providers.SocialAPI
	client   providers.SocialClient
	profiles *common.Loader[uint64, *dtos.FarcasterUser]
	activity activityLog
	origin   string
	hubSet   bool
	logger   *zap.SugaredLogger
}

type SocialServiceConfig struct {
	API    providers.SocialAPI
	Client providers.SocialClient
	// HubURL is the configured hub, reachable or not.
	HubURL string
	Store  common.Store[uint64, *dtos.FarcasterUser]
	// PublicOrigin prefixes the compare and embed links in casts.
	PublicOrigin string
	Activity     ActivityRecorder
	Metrics      *metrics.Registry
	Loader       common.LoaderOptions
}

func NewSocialService(cfg SocialServiceConfig) *SocialService {
	logger := cfg.Loader.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
		cfg.Loader.Logger = logger
	}
	if cfg.Loader.Metrics == nil {
		cfg.Loader.Metrics = cfg.Metrics
	}
	client := cfg.Client
	if client == nil {
		client = providers.UnavailableSocialClient{}
	}

	return &SocialService{
		api:      cfg.API,
		client:   client,
		profiles: common.NewLoader(string(constants.CacheSocialProfiles), cfg.Store, FallbackProfile, cfg.Loader),
		activity: activityLog{recorder: cfg.Activity, metrics: cfg.Metrics, logger: logger},
		origin:   strings.TrimRight(cfg.PublicOrigin, "/"),
		hubSet:   cfg.HubURL != "",
		logger:   logger.Named("social"),
	}
}

// FallbackProfile is served when a profile cannot be fetched.
func FallbackProfile(fid uint64) *dtos.FarcasterUser {
	return &dtos.FarcasterUser{FID: fid, Username: "unknown"}
}

func (s *SocialService) Profile(ctx context.Context, fid uint64) *dtos.FarcasterUser {
	return s.profiles.Load(ctx, fid, s.fetchProfile)
}

// Profiles batch-loads fids. Profiles that failed to load are omitted.
func (s *SocialService) Profiles(ctx context.Context, fids []uint64) map[uint64]*dtos.FarcasterUser {
	return s.profiles.LoadMany(ctx, fids, s.fetchProfile)
}

// CachedProfile never fetches.
func (s *SocialService) CachedProfile(fid uint64) (*dtos.FarcasterUser, bool) {
	return s.profiles.Peek(fid)
}

func (s *SocialService) fetchProfile(ctx context.Context, fid uint64) common.FetchResult[*dtos.FarcasterUser] {
	return s.api.GetFarcasterProfile(ctx, fid)
}

func (s *SocialService) Recommendations(ctx context.Context, fid uint64) []dtos.SocialRecommendation {
	recs, err := s.api.GetRecommendations(ctx, fid).Unwrap()
	if err != nil {
		s.logger.Warnw("failed to get social recommendations", "fid", fid, "error", err)
		return []dtos.SocialRecommendation{}
	}
	return recs
}

func (s *SocialService) Discussions(ctx context.Context, versionID string) []dtos.FarcasterCast {
	casts, err := s.api.GetVersionDiscussions(ctx, versionID).Unwrap()
	if err != nil {
		s.logger.Warnw("failed to get version discussions", "version_id", versionID, "error", err)
		return []dtos.FarcasterCast{}
	}
	return casts
}

// DiscoveryCast builds the text and embed link announcing a version.
func (s *SocialService) DiscoveryCast(version dtos.VersionInfo) dtos.CastRequest {
	artistTag := strings.Join(strings.Fields(version.Artist), "")
	text := fmt.Sprintf(
		"🎭 Just discovered an incredible %s version of \"%s\"! \n\n🎵 Compare versions: %s/compare/%s\n\n#VersionDiscovery #%s #VERSIONS",
		strings.ToLower(string(version.VersionType)),
		version.Title,
		s.origin,
		version.ID,
		artistTag,
	)
	return dtos.CastRequest{
		Text:     text,
		EmbedURL: fmt.Sprintf("%s/versions/%s", s.origin, version.ID),
	}
}

// CastVersionDiscovery publishes a discovery cast for version.
func (s *SocialService) CastVersionDiscovery(ctx context.Context, version dtos.VersionInfo) (*dtos.CastResult, error) {
	if version.ID == "" {
		return nil, fmt.Errorf("version id is required")
	}
	return s.Cast(ctx, s.DiscoveryCast(version), version.ID)
}

// Cast composes req through the social client and then tracks it with
// the backend. A tracking failure does not fail the cast.
func (s *SocialService) Cast(ctx context.Context, req dtos.CastRequest, subject string) (*dtos.CastResult, error) {
	if subject == "" {
		subject = req.EmbedURL
	}
	if !s.client.Available() {
		s.activity.record(ctx, constants.ActivityCast, subject, "", providers.ErrSDKUnavailable)
		return nil, providers.ErrSDKUnavailable
	}

	hash, err := s.client.ComposeCast(ctx, req.Text, req.EmbedURL)
	if err != nil {
		err = fmt.Errorf("failed to compose cast: %w", err)
		s.activity.record(ctx, constants.ActivityCast, subject, "", err)
		return nil, err
	}

	result := &dtos.CastResult{Hash: hash, Text: req.Text, EmbedURL: req.EmbedURL}
	if _, trackErr := s.api.TrackCast(ctx, req).Unwrap(); trackErr != nil {
		s.logger.Warnw("failed to track cast", "hash", hash, "error", trackErr)
	} else {
		result.Tracked = true
	}

	s.activity.record(ctx, constants.ActivityCast, subject, hash, nil)
	return result, nil
}

// SignOut drops every cached profile.
func (s *SocialService) SignOut() {
	s.profiles.Clear()
	s.logger.Infow("signed out, profile cache cleared")
}

// Status reports whether a hub is configured (Environment) and whether it
// answered at startup (Loaded).
func (s *SocialService) Status() dtos.SocialStatus {
	return dtos.SocialStatus{
		Loaded:      s.client.Available(),
		Environment: s.hubSet,
		CacheSize:   s.profiles.Size(),
	}
}

func (s *SocialService) Caches() []common.CacheHandle {
	return []common.CacheHandle{s.profiles}
}
