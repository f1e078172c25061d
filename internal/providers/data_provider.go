package providers

import (
	"context"
	"io"

	"versions/relay/internal/common"
	"versions/relay/internal/models/dtos"
)

// AudioAPI is the slice of the VERSIONS API the audio service consumes.
type AudioAPI interface {
	GetAudioMetadata(ctx context.Context, fileID string) common.FetchResult[*dtos.AudioMetadata]
	ListAudioFiles(ctx context.Context) common.FetchResult[[]string]
	AudioStreamURL(fileID string) string
}

// SocialAPI is the slice of the VERSIONS API the social service consumes.
type SocialAPI interface {
	GetFarcasterProfile(ctx context.Context, fid uint64) common.FetchResult[*dtos.FarcasterUser]
	TrackCast(ctx context.Context, req dtos.CastRequest) common.FetchResult[dtos.CastReceipt]
	GetRecommendations(ctx context.Context, fid uint64) common.FetchResult[[]dtos.SocialRecommendation]
	GetVersionDiscussions(ctx context.Context, versionID string) common.FetchResult[[]dtos.FarcasterCast]
}

// StorageAPI is the slice of the VERSIONS API the storage service consumes.
type StorageAPI interface {
	GetStorageInfo(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo]
	GetNetworkStatus(ctx context.Context) common.FetchResult[*dtos.NetworkStatus]
	GetCreatorEarnings(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings]
	GetCreatorAnalytics(ctx context.Context, address, period string) common.FetchResult[dtos.CreatorAnalytics]
	PayCreator(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt]
	Withdraw(ctx context.Context, req dtos.WithdrawRequest) common.FetchResult[*dtos.WithdrawReceipt]
	Upload(ctx context.Context, req dtos.UploadRequest) common.FetchResult[*dtos.StorageInfo]
	OpenStream(ctx context.Context, url string) (io.ReadCloser, error)
	PieceStreamURL(pieceCID string) string
}

var (
	_ AudioAPI   = (*VersionsAPIProvider)(nil)
	_ SocialAPI  = (*VersionsAPIProvider)(nil)
	_ StorageAPI = (*VersionsAPIProvider)(nil)
)
