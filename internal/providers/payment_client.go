package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"versions/relay/internal/constants"
	"versions/relay/internal/models/dtos"
)

// PaymentClient is the payment-rail capability. Token amounts are base
// units (6 decimals for USDFC).
type PaymentClient interface {
	Available() bool
	Connect(ctx context.Context) (*dtos.WalletSession, error)
	WalletBalance(ctx context.Context, account string) (*big.Int, error)
	CreateRail(ctx context.Context, payee string, metadata map[string]string) (string, error)
	// ModifyRailPayment sends a one-time payment on a rail and returns the tx hash.
	ModifyRailPayment(ctx context.Context, railID string, amount *big.Int) (string, error)
	Withdraw(ctx context.Context, amount *big.Int) (string, error)
	RailsForPayee(ctx context.Context, payee string) ([]dtos.PaymentRail, error)
	RailSettlements(ctx context.Context, railID string) ([]dtos.RailSettlement, error)
}

// RPCPaymentClient speaks JSON-RPC 2.0 to a payments node.
type RPCPaymentClient struct {
	endpoint string
	client   *http.Client
}

func NewRPCPaymentClient(endpoint string, client *http.Client) *RPCPaymentClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RPCPaymentClient{endpoint: endpoint, client: client}
}

func (c *RPCPaymentClient) Available() bool { return true }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call invokes method and decodes the result into out.
func (c *RPCPaymentClient) call(ctx context.Context, method string, out any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(err, method)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return buildHTTPError(resp.StatusCode, method, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("Failed to decode %s response", method),
			Details: string(respBody),
			Err:     err,
		}
	}
	if rpcResp.Error != nil {
		return &ProviderError{
			Code:    constants.ErrCodeEnvelopeFailure,
			Message: rpcResp.Error.Message,
			Details: fmt.Sprintf("%s rpc code %d", method, rpcResp.Error.Code),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("Unexpected %s result", method),
			Details: string(rpcResp.Result),
			Err:     err,
		}
	}
	return nil
}

func (c *RPCPaymentClient) Connect(ctx context.Context) (*dtos.WalletSession, error) {
	var session dtos.WalletSession
	if err := c.call(ctx, "payments_connect", &session); err != nil {
		return nil, err
	}
	if session.Account == "" {
		return nil, ErrWalletNotConnected
	}
	return &session, nil
}

func (c *RPCPaymentClient) WalletBalance(ctx context.Context, account string) (*big.Int, error) {
	var raw string
	if err := c.call(ctx, "payments_walletBalance", &raw, account); err != nil {
		return nil, err
	}
	return parseAmount(raw)
}

func (c *RPCPaymentClient) CreateRail(ctx context.Context, payee string, metadata map[string]string) (string, error) {
	var railID string
	if err := c.call(ctx, "payments_createRail", &railID, payee, metadata); err != nil {
		return "", err
	}
	return railID, nil
}

func (c *RPCPaymentClient) ModifyRailPayment(ctx context.Context, railID string, amount *big.Int) (string, error) {
	var txHash string
	// rate 0, one-time payment of amount
	if err := c.call(ctx, "payments_modifyRailPayment", &txHash, railID, "0", amount.String()); err != nil {
		return "", err
	}
	return txHash, nil
}

func (c *RPCPaymentClient) Withdraw(ctx context.Context, amount *big.Int) (string, error) {
	var txHash string
	if err := c.call(ctx, "payments_withdraw", &txHash, amount.String()); err != nil {
		return "", err
	}
	return txHash, nil
}

func (c *RPCPaymentClient) RailsForPayee(ctx context.Context, payee string) ([]dtos.PaymentRail, error) {
	var rails []dtos.PaymentRail
	if err := c.call(ctx, "payments_getRailsForPayee", &rails, payee); err != nil {
		return nil, err
	}
	return rails, nil
}

func (c *RPCPaymentClient) RailSettlements(ctx context.Context, railID string) ([]dtos.RailSettlement, error) {
	var settlements []dtos.RailSettlement
	if err := c.call(ctx, "payments_getRailSettlements", &settlements, railID); err != nil {
		return nil, err
	}
	return settlements, nil
}

func parseAmount(raw string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("Invalid token amount %q", raw),
		}
	}
	return n, nil
}

// UnavailablePaymentClient is used when no payments node is configured.
type UnavailablePaymentClient struct{}

func (UnavailablePaymentClient) Available() bool { return false }

func (UnavailablePaymentClient) Connect(context.Context) (*dtos.WalletSession, error) {
	return nil, ErrSDKUnavailable
}

func (UnavailablePaymentClient) WalletBalance(context.Context, string) (*big.Int, error) {
	return nil, ErrSDKUnavailable
}

func (UnavailablePaymentClient) CreateRail(context.Context, string, map[string]string) (string, error) {
	return "", ErrSDKUnavailable
}

func (UnavailablePaymentClient) ModifyRailPayment(context.Context, string, *big.Int) (string, error) {
	return "", ErrSDKUnavailable
}

func (UnavailablePaymentClient) Withdraw(context.Context, *big.Int) (string, error) {
	return "", ErrSDKUnavailable
}

func (UnavailablePaymentClient) RailsForPayee(context.Context, string) ([]dtos.PaymentRail, error) {
	return nil, ErrSDKUnavailable
}

func (UnavailablePaymentClient) RailSettlements(context.Context, string) ([]dtos.RailSettlement, error) {
	return nil, ErrSDKUnavailable
}

// ProbePaymentClient picks the payment capability once at startup by
// asking the node for its network name.
func ProbePaymentClient(ctx context.Context, rpcURL string, client *http.Client, logger *zap.SugaredLogger) PaymentClient {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if rpcURL == "" {
		logger.Infow("payments endpoint not configured, payment rails disabled")
		return UnavailablePaymentClient{}
	}

	rpc := NewRPCPaymentClient(rpcURL, client)
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var network string
	if err := rpc.call(probeCtx, "payments_network", &network); err != nil {
		logger.Warnw("payments endpoint unreachable, payment rails disabled", "url", rpcURL, "error", err)
		return UnavailablePaymentClient{}
	}

	logger.Infow("payments endpoint available", "url", rpcURL, "network", network)
	return rpc
}

var (
	_ SocialClient  = (*HubSocialClient)(nil)
	_ SocialClient  = UnavailableSocialClient{}
	_ PaymentClient = (*RPCPaymentClient)(nil)
	_ PaymentClient = UnavailablePaymentClient{}
)
