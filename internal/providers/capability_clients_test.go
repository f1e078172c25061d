package providers

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeSocialClient_EmptyURLIsUnavailable(t *testing.T) {
	client := ProbeSocialClient(context.Background(), "", nil, nil)
	if client.Available() {
		t.Fatal("expected unavailable client")
	}
	if _, err := client.ComposeCast(context.Background(), "hi", ""); !IsSDKUnavailable(err) {
		t.Errorf("expected SDK unavailable, got %v", err)
	}
}

func TestProbeSocialClient_HubDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := ProbeSocialClient(context.Background(), server.URL, nil, nil)
	if client.Available() {
		t.Error("expected unavailable client when probe fails")
	}
}

func TestHubSocialClient_ComposeCast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/info":
			w.WriteHeader(http.StatusOK)
		case "/v1/casts":
			var req composeCastRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode cast: %v", err)
				return
			}
			if req.Text != "hello" || len(req.Embeds) != 1 || req.Embeds[0] != "https://versions.app/versions/v1" {
				t.Errorf("unexpected cast request: %+v", req)
			}
			_, _ = w.Write([]byte(`{"hash":"0xcast"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := ProbeSocialClient(context.Background(), server.URL, nil, nil)
	if !client.Available() {
		t.Fatal("expected available client")
	}

	hash, err := client.ComposeCast(context.Background(), "hello", "https://versions.app/versions/v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash != "0xcast" {
		t.Errorf("expected hash 0xcast, got %s", hash)
	}
}

// rpcServer answers JSON-RPC calls from a method table.
func rpcServer(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode rpc request: %v", err)
			return
		}
		if req.JSONRPC != "2.0" || req.ID == "" {
			t.Errorf("malformed rpc request: %+v", req)
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := results[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestProbePaymentClient(t *testing.T) {
	server := rpcServer(t, map[string]any{
		"payments_network":       "calibration",
		"payments_walletBalance": "25000000",
		"payments_getRailsForPayee": []map[string]any{
			{"rail_id": "rail-1", "metadata": map[string]string{"title": "Demo"}},
		},
		"payments_getRailSettlements": []map[string]any{
			{"amount": "1500000", "timestamp": "2026-01-01T00:00:00Z"},
		},
	})

	client := ProbePaymentClient(context.Background(), server.URL, nil, nil)
	if !client.Available() {
		t.Fatal("expected available payment client")
	}

	balance, err := client.WalletBalance(context.Background(), "f1fan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Cmp(big.NewInt(25_000_000)) != 0 {
		t.Errorf("expected balance 25000000, got %s", balance)
	}

	rails, err := client.RailsForPayee(context.Background(), "f1creator")
	if err != nil || len(rails) != 1 || rails[0].RailID != "rail-1" {
		t.Fatalf("unexpected rails %+v, err %v", rails, err)
	}

	settlements, err := client.RailSettlements(context.Background(), "rail-1")
	if err != nil || len(settlements) != 1 || settlements[0].Amount != "1500000" {
		t.Fatalf("unexpected settlements %+v, err %v", settlements, err)
	}

	// Not in the method table: the rpc error is surfaced.
	if _, err := client.Withdraw(context.Background(), big.NewInt(1)); err == nil {
		t.Error("expected rpc error for unknown method")
	}
}

func TestProbePaymentClient_Unavailable(t *testing.T) {
	client := ProbePaymentClient(context.Background(), "", nil, nil)
	if client.Available() {
		t.Fatal("expected unavailable client")
	}
	if _, err := client.Connect(context.Background()); !errors.Is(err, ErrSDKUnavailable) {
		t.Errorf("expected ErrSDKUnavailable, got %v", err)
	}

	server := rpcServer(t, map[string]any{})
	if ProbePaymentClient(context.Background(), server.URL, nil, nil).Available() {
		t.Error("expected unavailable client when network probe fails")
	}
}

func TestWalletBalance_InvalidAmount(t *testing.T) {
	server := rpcServer(t, map[string]any{"payments_walletBalance": "not-a-number"})
	client := NewRPCPaymentClient(server.URL, nil)

	if _, err := client.WalletBalance(context.Background(), "f1fan"); !IsNetworkFailure(err) {
		t.Errorf("expected invalid data format failure, got %v", err)
	}
}
