package api

import (
	"net/http"

	"versions/relay/internal/common"
	"versions/relay/internal/providers"
)

// ConnectWallet handles POST /api/v1/wallet/connect
func (h *Handlers) ConnectWallet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.deps.Services.Storage.ConnectWallet(r.Context())
		if err != nil {
			respondWithError(w, err, http.StatusBadGateway)
			return
		}
		common.RespondSuccess(w, session)
	}
}

// GetWallet handles GET /api/v1/wallet
func (h *Handlers) GetWallet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := h.deps.Services.Storage.Wallet()
		if !ok {
			respondWithError(w, providers.ErrWalletNotConnected, http.StatusUnauthorized)
			return
		}
		common.RespondSuccess(w, session)
	}
}

// DisconnectWallet handles POST /api/v1/wallet/disconnect
func (h *Handlers) DisconnectWallet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.deps.Services.Storage.DisconnectWallet()
		common.RespondSuccess(w, map[string]bool{"disconnected": true})
	}
}
