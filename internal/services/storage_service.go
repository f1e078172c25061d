package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/metrics"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/providers"
)

const (
	defaultWithdrawalMethod = "bank"
	defaultAnalyticsPeriod  = "30d"
	withdrawalArrival       = "2-3 business days"
)

// StorageService covers Filecoin storage lookups, creator earnings and
// payments.
type StorageService struct {
	api      providers.StorageAPI
	payments providers.PaymentClient
	storage  *common.Loader[string, *dtos.StorageInfo]
	earnings *common.Loader[string, *dtos.CreatorEarnings]
	activity activityLog
	network  string
	cdnBase  string
	now      func() time.Time
	logger   *zap.SugaredLogger

	mu     sync.RWMutex
	wallet *dtos.WalletSession
}

type StorageServiceConfig struct {
	API           providers.StorageAPI
	Payments      providers.PaymentClient
	StorageStore  common.Store[string, *dtos.StorageInfo]
	EarningsStore common.Store[string, *dtos.CreatorEarnings]
	Network       string
	CDNBase       string
	Activity      ActivityRecorder
	Metrics       *metrics.Registry
	Loader        common.LoaderOptions
	// Now is overridable for tests.
	Now func() time.Time
}

func NewStorageService(cfg StorageServiceConfig) *StorageService {
	logger := cfg.Loader.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
		cfg.Loader.Logger = logger
	}
	if cfg.Loader.Metrics == nil {
		cfg.Loader.Metrics = cfg.Metrics
	}
	payments := cfg.Payments
	if payments == nil {
		payments = providers.UnavailablePaymentClient{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cdnBase := strings.TrimRight(cfg.CDNBase, "/")
	if cdnBase == "" {
		cdnBase = "https://cdn.filecoin.io"
	}

	s := &StorageService{
		api:      cfg.API,
		payments: payments,
		activity: activityLog{recorder: cfg.Activity, metrics: cfg.Metrics, logger: logger},
		network:  cfg.Network,
		cdnBase:  cdnBase,
		now:      now,
		logger:   logger.Named("storage"),
	}
	s.storage = common.NewLoader(string(constants.CacheStorageInfo), cfg.StorageStore,
		func(string) *dtos.StorageInfo { return nil }, cfg.Loader)
	s.earnings = common.NewLoader(string(constants.CacheCreatorEarnings), cfg.EarningsStore,
		func(string) *dtos.CreatorEarnings { return s.emptyEarnings() }, cfg.Loader)
	return s
}

// ============================================================================
// Wallet
// ============================================================================

func (s *StorageService) ConnectWallet(ctx context.Context) (*dtos.WalletSession, error) {
	session, err := s.payments.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}
	s.mu.Lock()
	s.wallet = session
	s.mu.Unlock()
	s.logger.Infow("wallet connected", "account", session.Account, "network", session.Network)
	return session, nil
}

// DisconnectWallet forgets the session and clears the storage and
// earnings caches.
func (s *StorageService) DisconnectWallet() {
	s.mu.Lock()
	s.wallet = nil
	s.mu.Unlock()
	s.storage.Clear()
	s.earnings.Clear()
	s.logger.Infow("wallet disconnected, storage caches cleared")
}

func (s *StorageService) Wallet() (*dtos.WalletSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet, s.wallet != nil
}

func (s *StorageService) account(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if session, ok := s.Wallet(); ok {
		return session.Account
	}
	return ""
}

// ============================================================================
// Reads
// ============================================================================

// StorageInfo returns the storage descriptor for fileID, or nil when it
// cannot be fetched. A nil result is never cached.
func (s *StorageService) StorageInfo(ctx context.Context, fileID string) *dtos.StorageInfo {
	return s.storage.Load(ctx, fileID, func(ctx context.Context, id string) common.FetchResult[*dtos.StorageInfo] {
		return s.api.GetStorageInfo(ctx, id)
	})
}

func (s *StorageService) NetworkStatus(ctx context.Context) *dtos.NetworkStatus {
	status, err := s.api.GetNetworkStatus(ctx).Unwrap()
	if err != nil {
		s.logger.Warnw("failed to get network status", "error", err)
		return &dtos.NetworkStatus{Network: s.network, Status: "unknown", Error: err.Error()}
	}
	return status
}

// CreatorEarnings returns cached earnings for address, or for the
// connected wallet when address is empty.
func (s *StorageService) CreatorEarnings(ctx context.Context, address string) (*dtos.CreatorEarnings, error) {
	address = s.account(address)
	if address == "" {
		return nil, errors.New("no creator address provided")
	}
	return s.earnings.Load(ctx, address, s.fetchEarnings), nil
}

func (s *StorageService) fetchEarnings(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
	if s.payments.Available() {
		return s.aggregateEarnings(ctx, address)
	}
	return s.api.GetCreatorEarnings(ctx, address)
}

type railEarning struct {
	entry  dtos.VersionEarning
	amount *big.Int
}

// aggregateEarnings sums settlements on every incoming rail. Rails whose
// settlements cannot be read are skipped.
func (s *StorageService) aggregateEarnings(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
	rails, err := s.payments.RailsForPayee(ctx, address)
	if err != nil {
		return common.Failure[*dtos.CreatorEarnings](fmt.Errorf("failed to query payment rails: %w", err))
	}
	if len(rails) == 0 {
		return common.Success(s.emptyEarnings())
	}

	total := new(big.Int)
	earned := make([]railEarning, 0, len(rails))

	for _, rail := range rails {
		settlements, err := s.payments.RailSettlements(ctx, rail.RailID)
		if err != nil {
			s.logger.Warnw("failed to get rail settlements", "rail_id", rail.RailID, "error", err)
			continue
		}

		sum, err := sumSettlements(settlements)
		if err != nil {
			s.logger.Warnw("invalid rail settlement", "rail_id", rail.RailID, "error", err)
			continue
		}
		total.Add(total, sum)
		if sum.Sign() <= 0 {
			continue
		}

		lastPayment := s.now().UTC().Format(time.RFC3339)
		if len(settlements) > 0 {
			lastPayment = settlements[len(settlements)-1].Timestamp
		}

		earned = append(earned, railEarning{
			amount: sum,
			entry: dtos.VersionEarning{
				RailID:        rail.RailID,
				VersionID:     metaOr(rail.Metadata, "version_id", "version-"+lastN(rail.RailID, 8)),
				Title:         metaOr(rail.Metadata, "title", "Version "+lastN(rail.RailID, 4)),
				EarningsUSDFC: sum.String(),
				EarningsUSD:   formatUSD(sum),
				PlayCount:     railPlayCount(rail),
				LastPayment:   lastPayment,
			},
		})
	}

	sort.SliceStable(earned, func(i, j int) bool {
		return earned[i].amount.Cmp(earned[j].amount) > 0
	})

	versions := make([]dtos.VersionEarning, len(earned))
	for i, e := range earned {
		versions[i] = e.entry
	}

	return common.Success(&dtos.CreatorEarnings{
		TotalEarningsUSDFC: total.String(),
		TotalEarningsUSD:   formatUSD(total),
		ActiveRails:        len(rails),
		VersionEarnings:    versions,
		LastUpdated:        s.now().UTC().Format(time.RFC3339),
	})
}

func sumSettlements(settlements []dtos.RailSettlement) (*big.Int, error) {
	sum := new(big.Int)
	for _, st := range settlements {
		amount, ok := new(big.Int).SetString(st.Amount, 10)
		if !ok {
			return nil, fmt.Errorf("invalid settlement amount %q", st.Amount)
		}
		sum.Add(sum, amount)
	}
	return sum, nil
}

func metaOr(meta map[string]string, key, fallback string) string {
	if v := meta[key]; v != "" {
		return v
	}
	return fallback
}

func railPlayCount(rail dtos.PaymentRail) int {
	if rail.PlayCount > 0 {
		return rail.PlayCount
	}
	if n, err := strconv.Atoi(rail.Metadata["play_count"]); err == nil {
		return n
	}
	return 0
}

func (s *StorageService) emptyEarnings() *dtos.CreatorEarnings {
	return &dtos.CreatorEarnings{
		TotalEarningsUSDFC: "0",
		TotalEarningsUSD:   "0.00",
		ActiveRails:        0,
		VersionEarnings:    []dtos.VersionEarning{},
		LastUpdated:        s.now().UTC().Format(time.RFC3339),
	}
}

// CreatorAnalytics is passed through from the backend; failures are
// returned to the caller.
func (s *StorageService) CreatorAnalytics(ctx context.Context, address, period string) (dtos.CreatorAnalytics, error) {
	address = s.account(address)
	if address == "" {
		return nil, providers.ErrWalletNotConnected
	}
	if period == "" {
		period = defaultAnalyticsPeriod
	}
	analytics, err := s.api.GetCreatorAnalytics(ctx, address, period).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("failed to get creator analytics: %w", err)
	}
	return analytics, nil
}

// Stream opens pieceCID from the CDN, falling back to the backend.
func (s *StorageService) Stream(ctx context.Context, pieceCID string) (io.ReadCloser, error) {
	body, cdnErr := s.api.OpenStream(ctx, s.CDNURL(pieceCID))
	if cdnErr == nil {
		return body, nil
	}
	s.logger.Debugw("cdn stream failed, falling back to api", "piece_cid", pieceCID, "error", cdnErr)

	body, err := s.api.OpenStream(ctx, s.api.PieceStreamURL(pieceCID))
	if err != nil {
		return nil, fmt.Errorf("failed to stream from global network: %w", err)
	}
	return body, nil
}

func (s *StorageService) CDNURL(pieceCID string) string {
	return s.cdnBase + "/" + pieceCID
}

// ============================================================================
// Writes
// ============================================================================

// SupportCreator pays a creator over a payment rail, falling back to the
// backend payment endpoint. When both fail the rail error is returned.
func (s *StorageService) SupportCreator(ctx context.Context, req dtos.CreatorPaymentRequest) (*dtos.PaymentReceipt, error) {
	if req.CreatorAddress == "" {
		return nil, errors.New("creator address is required")
	}
	amount, err := toBaseUnits(req.USDAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid payment amount: %w", err)
	}
	req.FanAddress = s.account(req.FanAddress)

	receipt, railErr := s.payViaRail(ctx, req, amount)
	if railErr == nil {
		s.activity.record(ctx, constants.ActivityPayment, req.CreatorAddress, receipt.RailID, nil)
		return receipt, nil
	}
	s.logger.Warnw("rail payment failed, trying api", "creator", req.CreatorAddress, "error", railErr)

	paid, apiErr := s.api.PayCreator(ctx, req).Unwrap()
	if apiErr != nil {
		s.logger.Warnw("api payment fallback also failed", "creator", req.CreatorAddress, "error", apiErr)
		s.activity.record(ctx, constants.ActivityPayment, req.CreatorAddress, "", railErr)
		return nil, railErr
	}

	receipt = &dtos.PaymentReceipt{
		Success:         true,
		TransactionHash: paid.TransactionHash,
		Amount:          req.USDAmount,
		Message:         sentMessage(req.USDAmount),
	}
	s.activity.record(ctx, constants.ActivityPayment, req.CreatorAddress, receipt.TransactionHash, nil)
	return receipt, nil
}

func (s *StorageService) payViaRail(ctx context.Context, req dtos.CreatorPaymentRequest, amount *big.Int) (*dtos.PaymentReceipt, error) {
	if !s.payments.Available() {
		return nil, providers.ErrSDKUnavailable
	}
	session, ok := s.Wallet()
	if !ok {
		return nil, providers.ErrWalletNotConnected
	}

	balance, err := s.payments.WalletBalance(ctx, session.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return nil, &providers.ProviderError{
			Code: constants.ErrCodeInsufficientBalance,
			Message: fmt.Sprintf("Insufficient USDFC balance. Required: %s USDFC, Available: %s USDFC",
				strconv.FormatFloat(req.USDAmount, 'f', -1, 64),
				new(big.Int).Quo(balance, big.NewInt(constants.USDFCDecimals)).String()),
		}
	}

	railID, err := s.payments.CreateRail(ctx, req.CreatorAddress, map[string]string{"payer": session.Account})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment rail: %w", err)
	}
	txHash, err := s.payments.ModifyRailPayment(ctx, railID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to send rail payment: %w", err)
	}

	return &dtos.PaymentReceipt{
		Success:         true,
		RailID:          railID,
		TransactionHash: txHash,
		Amount:          req.USDAmount,
		Message:         sentMessage(req.USDAmount),
		TransactionNote: req.Message,
	}, nil
}

func sentMessage(usd float64) string {
	return strconv.FormatFloat(usd, 'f', -1, 64) + " sent to creator!"
}

// WithdrawEarnings withdraws through the payment client when available
// and through the backend otherwise.
func (s *StorageService) WithdrawEarnings(ctx context.Context, req dtos.WithdrawRequest) (*dtos.WithdrawReceipt, error) {
	amount, err := toBaseUnits(req.AmountUSD)
	if err != nil {
		return nil, fmt.Errorf("invalid withdrawal amount: %w", err)
	}
	if req.WithdrawalMethod == "" {
		req.WithdrawalMethod = defaultWithdrawalMethod
	}
	req.CreatorAddress = s.account(req.CreatorAddress)

	receipt, err := s.withdraw(ctx, req, amount)
	detail := ""
	if receipt != nil {
		detail = receipt.TransactionHash
	}
	s.activity.record(ctx, constants.ActivityWithdraw, req.CreatorAddress, detail, err)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *StorageService) withdraw(ctx context.Context, req dtos.WithdrawRequest, amount *big.Int) (*dtos.WithdrawReceipt, error) {
	if !s.payments.Available() {
		if req.CreatorAddress == "" {
			return nil, providers.ErrWalletNotConnected
		}
		receipt, err := s.api.Withdraw(ctx, req).Unwrap()
		if err != nil {
			return nil, fmt.Errorf("withdrawal failed: %w", err)
		}
		return receipt, nil
	}

	session, ok := s.Wallet()
	if !ok {
		return nil, providers.ErrWalletNotConnected
	}

	balance, err := s.payments.WalletBalance(ctx, session.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return nil, &providers.ProviderError{
			Code:    constants.ErrCodeInsufficientBalance,
			Message: fmt.Sprintf("Insufficient balance. Available: %s USDFC", formatUSD(balance)),
		}
	}

	txHash, err := s.payments.Withdraw(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("withdrawal failed: %w", err)
	}
	return &dtos.WithdrawReceipt{
		Success:          true,
		TransactionHash:  txHash,
		AmountUSD:        req.AmountUSD,
		WithdrawalMethod: req.WithdrawalMethod,
		EstimatedArrival: withdrawalArrival,
	}, nil
}

// UploadVersion stores a version through the backend and primes the
// storage cache with the returned descriptor.
func (s *StorageService) UploadVersion(ctx context.Context, req dtos.UploadRequest) (*dtos.StorageInfo, error) {
	if req.Metadata.FileSize == 0 {
		req.Metadata.FileSize = int64(len(req.Content))
	}

	info, err := s.upload(ctx, req)
	detail := ""
	if info != nil {
		detail = info.PieceCID
	}
	s.activity.record(ctx, constants.ActivityUpload, req.FileID, detail, err)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *StorageService) upload(ctx context.Context, req dtos.UploadRequest) (*dtos.StorageInfo, error) {
	if err := s.ensureStorageFunds(ctx, req.Metadata.FileSize); err != nil {
		return nil, err
	}

	info, err := s.api.Upload(ctx, req).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if info.StorageCost == "" {
		info.StorageCost = strconv.FormatInt(CalculateStorageCost(req.Metadata.FileSize), 10)
	}
	if info.CDNURL == "" && IsValidPieceCID(info.PieceCID) {
		info.CDNURL = s.CDNURL(info.PieceCID)
	}
	s.storage.Prime(req.FileID, info)
	return info, nil
}

// ensureStorageFunds checks the connected wallet can cover storage. It
// is skipped when no payment client or wallet is present.
func (s *StorageService) ensureStorageFunds(ctx context.Context, size int64) error {
	if !s.payments.Available() {
		return nil
	}
	session, ok := s.Wallet()
	if !ok {
		return nil
	}
	required := big.NewInt(CalculateStorageCost(size))
	balance, err := s.payments.WalletBalance(ctx, session.Account)
	if err != nil {
		return fmt.Errorf("failed to read wallet balance: %w", err)
	}
	if balance.Cmp(required) < 0 {
		return &providers.ProviderError{
			Code:    constants.ErrCodeInsufficientBalance,
			Message: fmt.Sprintf("Insufficient USDFC balance. Required: %s, Available: %s", required, balance),
		}
	}
	return nil
}

func (s *StorageService) Caches() []common.CacheHandle {
	return []common.CacheHandle{s.storage, s.earnings}
}
