package services

import (
	"context"
	"io"
	"math/big"
	"sync"

	"versions/relay/internal/common"
	"versions/relay/internal/models/dtos"
	gormModels "versions/relay/internal/models/gorm"
	"versions/relay/internal/providers"
)

type mockVersionsAPI struct {
	getAudioMetadataFunc      func(ctx context.Context, fileID string) common.FetchResult[*dtos.AudioMetadata]
	listAudioFilesFunc        func(ctx context.Context) common.FetchResult[[]string]
	getFarcasterProfileFunc   func(ctx context.Context, fid uint64) common.FetchResult[*dtos.FarcasterUser]
	trackCastFunc             func(ctx context.Context, req dtos.CastRequest) common.FetchResult[dtos.CastReceipt]
	getRecommendationsFunc    func(ctx context.Context, fid uint64) common.FetchResult[[]dtos.SocialRecommendation]
	getVersionDiscussionsFunc func(ctx context.Context, versionID string) common.FetchResult[[]dtos.FarcasterCast]
	getStorageInfoFunc        func(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo]
	getNetworkStatusFunc      func(ctx context.Context) common.FetchResult[*dtos.NetworkStatus]
	getCreatorEarningsFunc    func(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings]
	getCreatorAnalyticsFunc   func(ctx context.Context, address, period string) common.FetchResult[dtos.CreatorAnalytics]
	payCreatorFunc            func(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt]
	withdrawFunc              func(ctx context.Context, req dtos.WithdrawRequest) common.FetchResult[*dtos.WithdrawReceipt]
	uploadFunc                func(ctx context.Context, req dtos.UploadRequest) common.FetchResult[*dtos.StorageInfo]
	openStreamFunc            func(ctx context.Context, url string) (io.ReadCloser, error)
}

func (m *mockVersionsAPI) GetAudioMetadata(ctx context.Context, fileID string) common.FetchResult[*dtos.AudioMetadata] {
	return m.getAudioMetadataFunc(ctx, fileID)
}

func (m *mockVersionsAPI) ListAudioFiles(ctx context.Context) common.FetchResult[[]string] {
	return m.listAudioFilesFunc(ctx)
}

func (m *mockVersionsAPI) AudioStreamURL(fileID string) string {
	return "http://api.test/api/v1/audio/" + fileID + "/stream"
}

func (m *mockVersionsAPI) GetFarcasterProfile(ctx context.Context, fid uint64) common.FetchResult[*dtos.FarcasterUser] {
	return m.getFarcasterProfileFunc(ctx, fid)
}

func (m *mockVersionsAPI) TrackCast(ctx context.Context, req dtos.CastRequest) common.FetchResult[dtos.CastReceipt] {
	return m.trackCastFunc(ctx, req)
}

func (m *mockVersionsAPI) GetRecommendations(ctx context.Context, fid uint64) common.FetchResult[[]dtos.SocialRecommendation] {
	return m.getRecommendationsFunc(ctx, fid)
}

func (m *mockVersionsAPI) GetVersionDiscussions(ctx context.Context, versionID string) common.FetchResult[[]dtos.FarcasterCast] {
	return m.getVersionDiscussionsFunc(ctx, versionID)
}

func (m *mockVersionsAPI) GetStorageInfo(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo] {
	return m.getStorageInfoFunc(ctx, fileID)
}

func (m *mockVersionsAPI) GetNetworkStatus(ctx context.Context) common.FetchResult[*dtos.NetworkStatus] {
	return m.getNetworkStatusFunc(ctx)
}

func (m *mockVersionsAPI) GetCreatorEarnings(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
	return m.getCreatorEarningsFunc(ctx, address)
}

func (m *mockVersionsAPI) GetCreatorAnalytics(ctx context.Context, address, period string) common.FetchResult[dtos.CreatorAnalytics] {
	return m.getCreatorAnalyticsFunc(ctx, address, period)
}

func (m *mockVersionsAPI) PayCreator(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt] {
	return m.payCreatorFunc(ctx, req)
}

func (m *mockVersionsAPI) Withdraw(ctx context.Context, req dtos.WithdrawRequest) common.FetchResult[*dtos.WithdrawReceipt] {
	return m.withdrawFunc(ctx, req)
}

func (m *mockVersionsAPI) Upload(ctx context.Context, req dtos.UploadRequest) common.FetchResult[*dtos.StorageInfo] {
	return m.uploadFunc(ctx, req)
}

func (m *mockVersionsAPI) OpenStream(ctx context.Context, url string) (io.ReadCloser, error) {
	return m.openStreamFunc(ctx, url)
}

func (m *mockVersionsAPI) PieceStreamURL(pieceCID string) string {
	return "http://api.test/api/v1/filecoin/stream/" + pieceCID
}

type mockSocialClient struct {
	available       bool
	composeCastFunc func(ctx context.Context, text, embedURL string) (string, error)
}

func (m *mockSocialClient) Available() bool { return m.available }

func (m *mockSocialClient) ComposeCast(ctx context.Context, text, embedURL string) (string, error) {
	return m.composeCastFunc(ctx, text, embedURL)
}

type mockPaymentClient struct {
	connectFunc           func(ctx context.Context) (*dtos.WalletSession, error)
	walletBalanceFunc     func(ctx context.Context, account string) (*big.Int, error)
	createRailFunc        func(ctx context.Context, payee string, metadata map[string]string) (string, error)
	modifyRailPaymentFunc func(ctx context.Context, railID string, amount *big.Int) (string, error)
	withdrawFunc          func(ctx context.Context, amount *big.Int) (string, error)
	railsForPayeeFunc     func(ctx context.Context, payee string) ([]dtos.PaymentRail, error)
	railSettlementsFunc   func(ctx context.Context, railID string) ([]dtos.RailSettlement, error)
}

func (m *mockPaymentClient) Available() bool { return true }

func (m *mockPaymentClient) Connect(ctx context.Context) (*dtos.WalletSession, error) {
	return m.connectFunc(ctx)
}

func (m *mockPaymentClient) WalletBalance(ctx context.Context, account string) (*big.Int, error) {
	return m.walletBalanceFunc(ctx, account)
}

func (m *mockPaymentClient) CreateRail(ctx context.Context, payee string, metadata map[string]string) (string, error) {
	return m.createRailFunc(ctx, payee, metadata)
}

func (m *mockPaymentClient) ModifyRailPayment(ctx context.Context, railID string, amount *big.Int) (string, error) {
	return m.modifyRailPaymentFunc(ctx, railID, amount)
}

func (m *mockPaymentClient) Withdraw(ctx context.Context, amount *big.Int) (string, error) {
	return m.withdrawFunc(ctx, amount)
}

func (m *mockPaymentClient) RailsForPayee(ctx context.Context, payee string) ([]dtos.PaymentRail, error) {
	return m.railsForPayeeFunc(ctx, payee)
}

func (m *mockPaymentClient) RailSettlements(ctx context.Context, railID string) ([]dtos.RailSettlement, error) {
	return m.railSettlementsFunc(ctx, railID)
}

// memoryRecorder keeps activity entries in a slice.
type memoryRecorder struct {
	mu      sync.Mutex
	entries []gormModels.Activity
}

func (r *memoryRecorder) Record(ctx context.Context, entry *gormModels.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryRecorder) last() gormModels.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

var (
	_ providers.AudioAPI      = (*mockVersionsAPI)(nil)
	_ providers.SocialAPI     = (*mockVersionsAPI)(nil)
	_ providers.StorageAPI    = (*mockVersionsAPI)(nil)
	_ providers.SocialClient  = (*mockSocialClient)(nil)
	_ providers.PaymentClient = (*mockPaymentClient)(nil)
)
