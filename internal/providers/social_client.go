package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"versions/relay/internal/constants"
)

// SocialClient is the social-platform capability. Callers branch on
// Available instead of probing the platform themselves.
type SocialClient interface {
	Available() bool
	// ComposeCast publishes a cast and returns its hash.
	ComposeCast(ctx context.Context, text, embedURL string) (string, error)
}

// HubSocialClient publishes casts through a hub HTTP API.
type HubSocialClient struct {
	baseURL string
	client  *http.Client
}

func NewHubSocialClient(baseURL string, client *http.Client) *HubSocialClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HubSocialClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *HubSocialClient) Available() bool { return true }

type composeCastRequest struct {
	Text   string   `json:"text"`
	Embeds []string `json:"embeds,omitempty"`
}

type composeCastResponse struct {
	Hash string `json:"hash"`
}

func (c *HubSocialClient) ComposeCast(ctx context.Context, text, embedURL string) (string, error) {
	payload := composeCastRequest{Text: text}
	if embedURL != "" {
		payload.Embeds = []string{embedURL}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cast: %w", err)
	}

	endpoint := c.baseURL + "/v1/casts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", transportError(err, endpoint)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", buildHTTPError(resp.StatusCode, endpoint, string(respBody))
	}

	var out composeCastResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode cast response",
			Details: string(respBody),
			Err:     err,
		}
	}
	return out.Hash, nil
}

// UnavailableSocialClient is used when no hub is reachable.
type UnavailableSocialClient struct{}

func (UnavailableSocialClient) Available() bool { return false }

func (UnavailableSocialClient) ComposeCast(context.Context, string, string) (string, error) {
	return "", ErrSDKUnavailable
}

// ProbeSocialClient picks the social capability once at startup. An empty
// hubURL or a hub that does not answer GET /v1/info yields the
// unavailable variant.
func ProbeSocialClient(ctx context.Context, hubURL string, client *http.Client, logger *zap.SugaredLogger) SocialClient {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if hubURL == "" {
		logger.Infow("social hub not configured, casting disabled")
		return UnavailableSocialClient{}
	}

	hub := NewHubSocialClient(hubURL, client)
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, hub.baseURL+"/v1/info", nil)
	if err != nil {
		logger.Warnw("social hub probe failed", "url", hubURL, "error", err)
		return UnavailableSocialClient{}
	}
	resp, err := hub.client.Do(req)
	if err != nil {
		logger.Warnw("social hub unreachable, casting disabled", "url", hubURL, "error", err)
		return UnavailableSocialClient{}
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnw("social hub probe returned non-2xx, casting disabled", "url", hubURL, "status", resp.StatusCode)
		return UnavailableSocialClient{}
	}

	logger.Infow("social hub available", "url", hubURL)
	return hub
}
