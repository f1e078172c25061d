package services

import (
	"context"
	"errors"
	"io"
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/providers"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newStorageService(api *mockVersionsAPI, payments providers.PaymentClient, rec ActivityRecorder) *StorageService {
	return NewStorageService(StorageServiceConfig{
		API:           api,
		Payments:      payments,
		StorageStore:  common.NewMemoryStore[string, *dtos.StorageInfo](),
		EarningsStore: common.NewMemoryStore[string, *dtos.CreatorEarnings](),
		Network:       "calibration",
		CDNBase:       "https://cdn.filecoin.io/",
		Activity:      rec,
		Now:           func() time.Time { return fixedNow },
	})
}

func connectedPayments(balance int64) *mockPaymentClient {
	return &mockPaymentClient{
		connectFunc: func(ctx context.Context) (*dtos.WalletSession, error) {
			return &dtos.WalletSession{Account: "f1fan", Network: "calibration"}, nil
		},
		walletBalanceFunc: func(ctx context.Context, account string) (*big.Int, error) {
			return big.NewInt(balance), nil
		},
	}
}

func TestStorageService_StorageInfoNilFallbackNotCached(t *testing.T) {
	api := &mockVersionsAPI{
		getStorageInfoFunc: func(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo] {
			return common.Failure[*dtos.StorageInfo](providers.ErrNotFound)
		},
	}
	svc := newStorageService(api, nil, nil)

	assert.Nil(t, svc.StorageInfo(context.Background(), "file-1"))
	assert.Equal(t, 0, svc.Caches()[0].Size())
}

func TestStorageService_NetworkStatusFallback(t *testing.T) {
	api := &mockVersionsAPI{
		getNetworkStatusFunc: func(ctx context.Context) common.FetchResult[*dtos.NetworkStatus] {
			return common.Failure[*dtos.NetworkStatus](errors.New("connection refused"))
		},
	}
	status := newStorageService(api, nil, nil).NetworkStatus(context.Background())

	assert.Equal(t, "calibration", status.Network)
	assert.Equal(t, "unknown", status.Status)
	assert.Contains(t, status.Error, "connection refused")
}

func TestStorageService_EarningsFromAPIWhenNoPayments(t *testing.T) {
	var calls int
	api := &mockVersionsAPI{
		getCreatorEarningsFunc: func(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
			calls++
			return common.Success(&dtos.CreatorEarnings{TotalEarningsUSDFC: "5000000", TotalEarningsUSD: "5.00", ActiveRails: 1})
		},
	}
	svc := newStorageService(api, nil, nil)

	got, err := svc.CreatorEarnings(context.Background(), "f1creator")
	require.NoError(t, err)
	assert.Equal(t, "5.00", got.TotalEarningsUSD)

	_, err = svc.CreatorEarnings(context.Background(), "f1creator")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = svc.CreatorEarnings(context.Background(), "")
	assert.Error(t, err)
}

func TestStorageService_EarningsFallbackIsZero(t *testing.T) {
	api := &mockVersionsAPI{
		getCreatorEarningsFunc: func(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
			return common.Failure[*dtos.CreatorEarnings](errors.New("boom"))
		},
	}
	got, err := newStorageService(api, nil, nil).CreatorEarnings(context.Background(), "f1creator")
	require.NoError(t, err)
	assert.Equal(t, "0", got.TotalEarningsUSDFC)
	assert.Equal(t, "0.00", got.TotalEarningsUSD)
	assert.Empty(t, got.VersionEarnings)
	assert.Equal(t, fixedNow.Format(time.RFC3339), got.LastUpdated)
}

func TestStorageService_EarningsAggregatedFromRails(t *testing.T) {
	payments := &mockPaymentClient{
		railsForPayeeFunc: func(ctx context.Context, payee string) ([]dtos.PaymentRail, error) {
			return []dtos.PaymentRail{
				{RailID: "rail-0000aaaa11112222", Metadata: map[string]string{"title": "Small"}},
				{RailID: "rail-zero"},
				{RailID: "rail-broken"},
				{RailID: "rail-0000bbbb33334444", Metadata: map[string]string{"version_id": "v-big", "play_count": "12"}},
			}, nil
		},
		railSettlementsFunc: func(ctx context.Context, railID string) ([]dtos.RailSettlement, error) {
			switch railID {
			case "rail-0000aaaa11112222":
				return []dtos.RailSettlement{{Amount: "1250000", Timestamp: "2026-01-01T00:00:00Z"}}, nil
			case "rail-zero":
				return []dtos.RailSettlement{{Amount: "0", Timestamp: "2026-01-02T00:00:00Z"}}, nil
			case "rail-broken":
				return nil, errors.New("rpc failure")
			default:
				return []dtos.RailSettlement{
					{Amount: "3000000", Timestamp: "2026-01-03T00:00:00Z"},
					{Amount: "2005000", Timestamp: "2026-01-04T00:00:00Z"},
				}, nil
			}
		},
	}
	svc := newStorageService(&mockVersionsAPI{}, payments, nil)

	got, err := svc.CreatorEarnings(context.Background(), "f1creator")
	require.NoError(t, err)

	assert.Equal(t, "6255000", got.TotalEarningsUSDFC)
	assert.Equal(t, "6.26", got.TotalEarningsUSD)
	assert.Equal(t, 4, got.ActiveRails)
	require.Len(t, got.VersionEarnings, 2)

	top := got.VersionEarnings[0]
	assert.Equal(t, "v-big", top.VersionID)
	assert.Equal(t, "Version 4444", top.Title)
	assert.Equal(t, "5005000", top.EarningsUSDFC)
	assert.Equal(t, "5.01", top.EarningsUSD)
	assert.Equal(t, 12, top.PlayCount)
	assert.Equal(t, "2026-01-04T00:00:00Z", top.LastPayment)

	second := got.VersionEarnings[1]
	assert.Equal(t, "version-11112222", second.VersionID)
	assert.Equal(t, "Small", second.Title)
	assert.Equal(t, "1.25", second.EarningsUSD)
}

func TestStorageService_SupportCreatorViaRail(t *testing.T) {
	payments := connectedPayments(10_000_000)
	var paid *big.Int
	payments.createRailFunc = func(ctx context.Context, payee string, metadata map[string]string) (string, error) {
		assert.Equal(t, "f1creator", payee)
		return "rail-9", nil
	}
	payments.modifyRailPaymentFunc = func(ctx context.Context, railID string, amount *big.Int) (string, error) {
		paid = amount
		return "0xpaid", nil
	}
	rec := &memoryRecorder{}
	svc := newStorageService(&mockVersionsAPI{}, payments, rec)
	_, err := svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	receipt, err := svc.SupportCreator(context.Background(), dtos.CreatorPaymentRequest{CreatorAddress: "f1creator", USDAmount: 2.5, Message: "love it"})
	require.NoError(t, err)

	assert.True(t, receipt.Success)
	assert.Equal(t, "rail-9", receipt.RailID)
	assert.Equal(t, "2.5 sent to creator!", receipt.Message)
	assert.Equal(t, "love it", receipt.TransactionNote)
	assert.Equal(t, int64(2_500_000), paid.Int64())
	assert.Equal(t, string(constants.ActivityPayment), rec.last().Kind)
}

func TestStorageService_SupportCreatorFallsBackToAPI(t *testing.T) {
	var sent dtos.CreatorPaymentRequest
	api := &mockVersionsAPI{
		payCreatorFunc: func(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt] {
			sent = req
			return common.Success(&dtos.PaymentReceipt{TransactionHash: "0xapi"})
		},
	}
	svc := newStorageService(api, nil, nil)

	receipt, err := svc.SupportCreator(context.Background(), dtos.CreatorPaymentRequest{CreatorAddress: "f1creator", FanAddress: "f1fan", USDAmount: 5})
	require.NoError(t, err)
	assert.Equal(t, "0xapi", receipt.TransactionHash)
	assert.Equal(t, "5 sent to creator!", receipt.Message)
	assert.Equal(t, "f1fan", sent.FanAddress)
}

func TestStorageService_SupportCreatorReturnsRailErrorWhenBothFail(t *testing.T) {
	api := &mockVersionsAPI{
		payCreatorFunc: func(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt] {
			return common.Failure[*dtos.PaymentReceipt](errors.New("api down"))
		},
	}
	rec := &memoryRecorder{}
	svc := newStorageService(api, connectedPayments(1_000_000), rec)
	_, err := svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	_, err = svc.SupportCreator(context.Background(), dtos.CreatorPaymentRequest{CreatorAddress: "f1creator", USDAmount: 5})
	require.Error(t, err)

	var pe *providers.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, constants.ErrCodeInsufficientBalance, pe.Code)
	assert.Contains(t, pe.Message, "Available: 1 USDFC")
	assert.Equal(t, constants.ActivityStatusFailed, rec.last().Status)
}

func TestStorageService_SupportCreatorValidation(t *testing.T) {
	svc := newStorageService(&mockVersionsAPI{}, nil, nil)

	_, err := svc.SupportCreator(context.Background(), dtos.CreatorPaymentRequest{USDAmount: 1})
	assert.Error(t, err)
	_, err = svc.SupportCreator(context.Background(), dtos.CreatorPaymentRequest{CreatorAddress: "f1creator"})
	assert.Error(t, err)
}

func TestStorageService_SupportCreatorRejectsOutOfRangeAmounts(t *testing.T) {
	payments := connectedPayments(5_000_000)
	payments.modifyRailPaymentFunc = func(ctx context.Context, railID string, amount *big.Int) (string, error) {
		t.Errorf("unexpected rail payment of %s", amount)
		return "", nil
	}
	api := &mockVersionsAPI{
		payCreatorFunc: func(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt] {
			t.Errorf("unexpected api payment of %v", req.USDAmount)
			return common.Success(&dtos.PaymentReceipt{})
		},
	}
	svc := newStorageService(api, payments, nil)
	_, err := svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	for _, usd := range []float64{1e20, 1_000_001, 1e-7, 0, -3, math.NaN(), math.Inf(1)} {
		_, err := svc.SupportCreator(context.Background(), dtos.CreatorPaymentRequest{CreatorAddress: "f1creator", USDAmount: usd})
		assert.Error(t, err, "amount %v", usd)
	}
}

func TestStorageService_WithdrawRejectsOutOfRangeAmounts(t *testing.T) {
	payments := connectedPayments(5_000_000)
	payments.withdrawFunc = func(ctx context.Context, amount *big.Int) (string, error) {
		t.Errorf("unexpected withdrawal of %s", amount)
		return "", nil
	}
	svc := newStorageService(&mockVersionsAPI{}, payments, nil)
	_, err := svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	for _, usd := range []float64{1e20, 1e-7, -1, math.Inf(-1)} {
		_, err := svc.WithdrawEarnings(context.Background(), dtos.WithdrawRequest{AmountUSD: usd})
		assert.Error(t, err, "amount %v", usd)
	}
}

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		usd  float64
		want int64
	}{
		{2.5, 2_500_000},
		{0.3, 300_000},
		{0.000001, 1},
		{0.0000019, 1},
		{1_000_000, 1_000_000_000_000},
	}
	for _, tt := range tests {
		got, err := toBaseUnits(tt.usd)
		require.NoError(t, err, "toBaseUnits(%v)", tt.usd)
		assert.Equal(t, tt.want, got.Int64(), "toBaseUnits(%v)", tt.usd)
	}

	for _, usd := range []float64{1e20, 1e-7, 0, -0.5, math.NaN()} {
		_, err := toBaseUnits(usd)
		assert.Error(t, err, "toBaseUnits(%v)", usd)
	}
}

func TestStorageService_WithdrawViaPayments(t *testing.T) {
	payments := connectedPayments(50_000_000)
	payments.withdrawFunc = func(ctx context.Context, amount *big.Int) (string, error) {
		assert.Equal(t, int64(20_000_000), amount.Int64())
		return "0xwithdraw", nil
	}
	svc := newStorageService(&mockVersionsAPI{}, payments, nil)

	_, err := svc.WithdrawEarnings(context.Background(), dtos.WithdrawRequest{AmountUSD: 20})
	assert.ErrorIs(t, err, providers.ErrWalletNotConnected)

	_, err = svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	receipt, err := svc.WithdrawEarnings(context.Background(), dtos.WithdrawRequest{AmountUSD: 20})
	require.NoError(t, err)
	assert.Equal(t, "0xwithdraw", receipt.TransactionHash)
	assert.Equal(t, "bank", receipt.WithdrawalMethod)
	assert.Equal(t, "2-3 business days", receipt.EstimatedArrival)

	_, err = svc.WithdrawEarnings(context.Background(), dtos.WithdrawRequest{AmountUSD: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available: 50.00 USDFC")
}

func TestStorageService_WithdrawViaAPI(t *testing.T) {
	api := &mockVersionsAPI{
		withdrawFunc: func(ctx context.Context, req dtos.WithdrawRequest) common.FetchResult[*dtos.WithdrawReceipt] {
			return common.Success(&dtos.WithdrawReceipt{Success: true, AmountUSD: req.AmountUSD, WithdrawalMethod: req.WithdrawalMethod})
		},
	}
	svc := newStorageService(api, nil, nil)

	receipt, err := svc.WithdrawEarnings(context.Background(), dtos.WithdrawRequest{CreatorAddress: "f1creator", AmountUSD: 3, WithdrawalMethod: "crypto"})
	require.NoError(t, err)
	assert.Equal(t, "crypto", receipt.WithdrawalMethod)

	_, err = svc.WithdrawEarnings(context.Background(), dtos.WithdrawRequest{AmountUSD: 3})
	assert.ErrorIs(t, err, providers.ErrWalletNotConnected)
}

func TestStorageService_UploadPrimesStorageCache(t *testing.T) {
	api := &mockVersionsAPI{
		uploadFunc: func(ctx context.Context, req dtos.UploadRequest) common.FetchResult[*dtos.StorageInfo] {
			assert.Equal(t, int64(2*1024*1024), req.Metadata.FileSize)
			return common.Success(&dtos.StorageInfo{PieceCID: "bafkzcibd6adqm6c3a5d7getcyxjrrjvv3lb6ulpzhtk4hqjhhnokq5phyn5ddfa"})
		},
		getStorageInfoFunc: func(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo] {
			t.Error("storage info should be served from cache after upload")
			return common.Failure[*dtos.StorageInfo](errors.New("unexpected"))
		},
	}
	rec := &memoryRecorder{}
	svc := newStorageService(api, nil, rec)

	info, err := svc.UploadVersion(context.Background(), dtos.UploadRequest{
		FileID:  "file-1",
		Content: make([]byte, 2*1024*1024),
	})
	require.NoError(t, err)
	assert.Equal(t, "2000", info.StorageCost)
	assert.True(t, strings.HasPrefix(info.CDNURL, "https://cdn.filecoin.io/bafk"))

	assert.Same(t, info, svc.StorageInfo(context.Background(), "file-1"))
	assert.Equal(t, string(constants.ActivityUpload), rec.last().Kind)
}

func TestStorageService_UploadInsufficientFunds(t *testing.T) {
	api := &mockVersionsAPI{
		uploadFunc: func(ctx context.Context, req dtos.UploadRequest) common.FetchResult[*dtos.StorageInfo] {
			t.Error("upload should not be attempted")
			return common.Failure[*dtos.StorageInfo](errors.New("unexpected"))
		},
	}
	svc := newStorageService(api, connectedPayments(10), nil)
	_, err := svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	_, err = svc.UploadVersion(context.Background(), dtos.UploadRequest{FileID: "file-1", Content: make([]byte, 1024*1024)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient USDFC balance")
}

func TestStorageService_StreamFallsBackToAPI(t *testing.T) {
	var urls []string
	api := &mockVersionsAPI{
		openStreamFunc: func(ctx context.Context, url string) (io.ReadCloser, error) {
			urls = append(urls, url)
			if strings.HasPrefix(url, "https://cdn.filecoin.io/") {
				return nil, providers.ErrNotFound
			}
			return io.NopCloser(strings.NewReader("bytes")), nil
		},
	}
	svc := newStorageService(api, nil, nil)

	body, err := svc.Stream(context.Background(), "bafk123")
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, []string{
		"https://cdn.filecoin.io/bafk123",
		"http://api.test/api/v1/filecoin/stream/bafk123",
	}, urls)
}

func TestStorageService_DisconnectClearsCaches(t *testing.T) {
	api := &mockVersionsAPI{
		getStorageInfoFunc: func(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo] {
			return common.Success(&dtos.StorageInfo{PieceCID: "bafk1"})
		},
		getCreatorEarningsFunc: func(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
			return common.Success(&dtos.CreatorEarnings{TotalEarningsUSD: "1.00"})
		},
	}
	svc := newStorageService(api, connectedPayments(0), nil)
	_, err := svc.ConnectWallet(context.Background())
	require.NoError(t, err)

	svc.StorageInfo(context.Background(), "file-1")
	assert.Equal(t, 1, svc.Caches()[0].Size())

	svc.DisconnectWallet()
	_, connected := svc.Wallet()
	assert.False(t, connected)
	for _, c := range svc.Caches() {
		assert.Equal(t, 0, c.Size(), c.Name())
	}
}

func TestStorageService_CreatorAnalytics(t *testing.T) {
	api := &mockVersionsAPI{
		getCreatorAnalyticsFunc: func(ctx context.Context, address, period string) common.FetchResult[dtos.CreatorAnalytics] {
			assert.Equal(t, "30d", period)
			return common.Failure[dtos.CreatorAnalytics](errors.New("analytics down"))
		},
	}
	svc := newStorageService(api, nil, nil)

	_, err := svc.CreatorAnalytics(context.Background(), "", "")
	assert.ErrorIs(t, err, providers.ErrWalletNotConnected)

	_, err = svc.CreatorAnalytics(context.Background(), "f1creator", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics down")
}

func TestStorageHelpers(t *testing.T) {
	assert.Equal(t, int64(0), CalculateStorageCost(0))
	assert.Equal(t, int64(1), CalculateStorageCost(1))
	assert.Equal(t, int64(1000), CalculateStorageCost(1024*1024))
	assert.Equal(t, int64(1001), CalculateStorageCost(1024*1024+1))

	assert.Equal(t, "Free", FormatStorageCost(""))
	assert.Equal(t, "0.5 USDFC", FormatStorageCost("0.5 USDFC"))

	assert.Equal(t, "Unknown", FormatPieceCID(""))
	assert.Equal(t, "bafkshort", FormatPieceCID("bafkshort"))
	assert.Equal(t, "bafkzcib...5ddfa123", FormatPieceCID("bafkzcibd6adqm6c3a5d7getcyx5ddfa123"))

	assert.True(t, IsValidPieceCID("bafk123"))
	assert.False(t, IsValidPieceCID("Qm123"))
	assert.False(t, IsValidPieceCID(""))

	assert.Equal(t, "6.26", formatUSD(big.NewInt(6_255_000)))
	baseUnits, err := toBaseUnits(2.5)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000), baseUnits.Int64())
}
