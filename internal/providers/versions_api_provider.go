package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/models/dtos"
)

// VersionsAPIProvider talks to the VERSIONS REST backend. Every call
// returns a FetchResult: the {success, data, error} envelope is checked
// here, once, and never by callers.
type VersionsAPIProvider struct {
	BaseURL string
	Client  *http.Client
	// Limiter throttles outbound calls. Nil disables throttling.
	Limiter *rate.Limiter
}

// NewVersionsAPIProvider creates a provider for the API at baseURL
func NewVersionsAPIProvider(baseURL string, timeout time.Duration, limiter *rate.Limiter) *VersionsAPIProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VersionsAPIProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Limiter: limiter,
	}
}

// ============================================================================
// Audio
// ============================================================================

func (p *VersionsAPIProvider) GetAudioMetadata(ctx context.Context, fileID string) common.FetchResult[*dtos.AudioMetadata] {
	if fileID == "" {
		return common.Failure[*dtos.AudioMetadata](invalidInput("file id cannot be empty"))
	}
	return getEnvelope[*dtos.AudioMetadata](ctx, p, "/api/v1/audio/"+url.PathEscape(fileID)+"/metadata")
}

func (p *VersionsAPIProvider) ListAudioFiles(ctx context.Context) common.FetchResult[[]string] {
	return getEnvelope[[]string](ctx, p, "/api/v1/audio/files")
}

func (p *VersionsAPIProvider) AudioStreamURL(fileID string) string {
	return p.BaseURL + "/api/v1/audio/" + url.PathEscape(fileID) + "/stream"
}

// ============================================================================
// Farcaster
// ============================================================================

func (p *VersionsAPIProvider) GetFarcasterProfile(ctx context.Context, fid uint64) common.FetchResult[*dtos.FarcasterUser] {
	return getEnvelope[*dtos.FarcasterUser](ctx, p, fmt.Sprintf("/api/v1/farcaster/profile/%d", fid))
}

func (p *VersionsAPIProvider) TrackCast(ctx context.Context, req dtos.CastRequest) common.FetchResult[dtos.CastReceipt] {
	if req.Text == "" {
		return common.Failure[dtos.CastReceipt](invalidInput("cast text cannot be empty"))
	}
	return postEnvelope[dtos.CastReceipt](ctx, p, "/api/v1/farcaster/cast", req)
}

func (p *VersionsAPIProvider) GetRecommendations(ctx context.Context, fid uint64) common.FetchResult[[]dtos.SocialRecommendation] {
	return getEnvelope[[]dtos.SocialRecommendation](ctx, p, fmt.Sprintf("/api/v1/farcaster/recommendations?fid=%d", fid))
}

func (p *VersionsAPIProvider) GetVersionDiscussions(ctx context.Context, versionID string) common.FetchResult[[]dtos.FarcasterCast] {
	return getEnvelope[[]dtos.FarcasterCast](ctx, p, "/api/v1/versions/"+url.PathEscape(versionID)+"/discussions")
}

// ============================================================================
// Filecoin
// ============================================================================

func (p *VersionsAPIProvider) GetStorageInfo(ctx context.Context, fileID string) common.FetchResult[*dtos.StorageInfo] {
	return getEnvelope[*dtos.StorageInfo](ctx, p, "/api/v1/filecoin/storage/"+url.PathEscape(fileID))
}

func (p *VersionsAPIProvider) GetNetworkStatus(ctx context.Context) common.FetchResult[*dtos.NetworkStatus] {
	return getEnvelope[*dtos.NetworkStatus](ctx, p, "/api/v1/filecoin/network/status")
}

func (p *VersionsAPIProvider) GetCreatorEarnings(ctx context.Context, address string) common.FetchResult[*dtos.CreatorEarnings] {
	q := url.Values{"address": {address}}
	return getEnvelope[*dtos.CreatorEarnings](ctx, p, "/api/v1/filecoin/creator/earnings?"+q.Encode())
}

func (p *VersionsAPIProvider) GetCreatorAnalytics(ctx context.Context, address, period string) common.FetchResult[dtos.CreatorAnalytics] {
	q := url.Values{"address": {address}, "period": {period}}
	return getEnvelope[dtos.CreatorAnalytics](ctx, p, "/api/v1/filecoin/creator/analytics?"+q.Encode())
}

func (p *VersionsAPIProvider) PayCreator(ctx context.Context, req dtos.CreatorPaymentRequest) common.FetchResult[*dtos.PaymentReceipt] {
	return postEnvelope[*dtos.PaymentReceipt](ctx, p, "/api/v1/filecoin/payment/creator", req)
}

func (p *VersionsAPIProvider) Withdraw(ctx context.Context, req dtos.WithdrawRequest) common.FetchResult[*dtos.WithdrawReceipt] {
	return postEnvelope[*dtos.WithdrawReceipt](ctx, p, "/api/v1/filecoin/creator/withdraw", req)
}

func (p *VersionsAPIProvider) Upload(ctx context.Context, req dtos.UploadRequest) common.FetchResult[*dtos.StorageInfo] {
	if req.FileID == "" {
		return common.Failure[*dtos.StorageInfo](invalidInput("file id cannot be empty"))
	}
	return postEnvelope[*dtos.StorageInfo](ctx, p, "/api/v1/filecoin/upload", req)
}

func (p *VersionsAPIProvider) PieceStreamURL(pieceCID string) string {
	return p.BaseURL + "/api/v1/filecoin/stream/" + url.PathEscape(pieceCID)
}

// OpenStream GETs an absolute URL and returns the body on 2xx. The
// caller closes it.
func (p *VersionsAPIProvider) OpenStream(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeNetworkError, Message: "Failed to create request", Err: err}
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, transportError(err, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, buildHTTPError(resp.StatusCode, rawURL, string(body))
	}
	return resp.Body, nil
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

func getEnvelope[T any](ctx context.Context, p *VersionsAPIProvider, endpoint string) common.FetchResult[T] {
	return doEnvelope[T](ctx, p, http.MethodGet, endpoint, nil)
}

func postEnvelope[T any](ctx context.Context, p *VersionsAPIProvider, endpoint string, payload any) common.FetchResult[T] {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return common.Failure[T](&ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		})
	}
	return doEnvelope[T](ctx, p, http.MethodPost, endpoint, payloadBytes)
}

// doEnvelope performs the request and validates the envelope. A
// Success always carries a non-nil data payload.
func doEnvelope[T any](ctx context.Context, p *VersionsAPIProvider, method, endpoint string, body []byte) common.FetchResult[T] {
	if err := p.wait(ctx); err != nil {
		return common.Failure[T](err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+endpoint, reader)
	if err != nil {
		return common.Failure[T](&ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return common.Failure[T](transportError(err, endpoint))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.Failure[T](transportError(err, endpoint))
	}

	var env dtos.Envelope[T]
	decodeErr := json.Unmarshal(bodyBytes, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details := string(bodyBytes)
		if decodeErr == nil && env.ErrorMessage() != "" {
			details = env.ErrorMessage()
		}
		return common.Failure[T](buildHTTPError(resp.StatusCode, endpoint, details))
	}

	if decodeErr != nil {
		return common.Failure[T](&ProviderError{
			Code:       constants.ErrCodeInvalidDataFormat,
			Message:    "Failed to decode response",
			Details:    string(bodyBytes),
			StatusCode: resp.StatusCode,
			Err:        decodeErr,
		})
	}

	if !env.Success {
		msg := env.ErrorMessage()
		code := constants.ErrCodeEnvelopeFailure
		if strings.Contains(strings.ToLower(msg), "not found") {
			code = constants.ErrCodeResourceNotFound
		}
		if msg == "" {
			msg = constants.GetErrorMessage(code)
		}
		return common.Failure[T](&ProviderError{
			Code:       code,
			Message:    msg,
			Details:    endpoint,
			StatusCode: resp.StatusCode,
		})
	}

	if env.Data == nil {
		return common.Failure[T](&ProviderError{
			Code:       constants.ErrCodeResourceNotFound,
			Message:    fmt.Sprintf("Empty payload from %s", endpoint),
			StatusCode: resp.StatusCode,
		})
	}

	return common.Success(*env.Data)
}

func (p *VersionsAPIProvider) wait(ctx context.Context) error {
	if p.Limiter == nil {
		return nil
	}
	if err := p.Limiter.Wait(ctx); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Err:     err,
		}
	}
	return nil
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusNotFound:
		return &ProviderError{
			Code:       constants.ErrCodeResourceNotFound,
			Message:    fmt.Sprintf("Resource not found: %s", endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:       constants.ErrCodeRateLimited,
			Message:    constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Code:       constants.ErrCodeInvalidDataFormat,
			Message:    fmt.Sprintf("Bad request to %s", endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	default:
		return &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	}
}

func invalidInput(msg string) error {
	return &ProviderError{
		Code:    constants.ErrCodeInvalidDataFormat,
		Message: msg,
	}
}
