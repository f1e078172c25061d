package api

import (
	"io"
	"net/http"

	"versions/relay/internal/common"
	"versions/relay/internal/models/dtos"
	"versions/relay/internal/services"
)

// GetStorageInfo handles GET /api/v1/filecoin/storage/{file_id}
func (h *Handlers) GetStorageInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := h.deps.Services.Storage.StorageInfo(r.Context(), urlParam(r, "file_id"))
		if info == nil {
			common.RespondError(w, nil, "Storage info not available", http.StatusNotFound)
			return
		}
		common.RespondSuccess(w, info)
	}
}

// GetNetworkStatus handles GET /api/v1/filecoin/network/status
func (h *Handlers) GetNetworkStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, h.deps.Services.Storage.NetworkStatus(r.Context()))
	}
}

// GetCreatorEarnings handles GET /api/v1/filecoin/creator/earnings?address=
func (h *Handlers) GetCreatorEarnings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		earnings, err := h.deps.Services.Storage.CreatorEarnings(r.Context(), r.URL.Query().Get("address"))
		if err != nil {
			respondWithError(w, err, http.StatusBadRequest)
			return
		}
		common.RespondSuccess(w, earnings)
	}
}

// GetCreatorAnalytics handles GET /api/v1/filecoin/creator/analytics
func (h *Handlers) GetCreatorAnalytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		analytics, err := h.deps.Services.Storage.CreatorAnalytics(r.Context(), q.Get("address"), q.Get("period"))
		if err != nil {
			respondWithError(w, err, http.StatusBadGateway)
			return
		}
		common.RespondSuccess(w, analytics)
	}
}

// PayCreator handles POST /api/v1/filecoin/payment/creator
func (h *Handlers) PayCreator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CreatorPaymentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		receipt, err := h.deps.Services.Storage.SupportCreator(r.Context(), req)
		if err != nil {
			respondWithError(w, err, http.StatusBadRequest)
			return
		}
		common.RespondSuccess(w, receipt)
	}
}

// WithdrawEarnings handles POST /api/v1/filecoin/creator/withdraw
func (h *Handlers) WithdrawEarnings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.WithdrawRequest
		if !decodeBody(w, r, &req) {
			return
		}
		receipt, err := h.deps.Services.Storage.WithdrawEarnings(r.Context(), req)
		if err != nil {
			respondWithError(w, err, http.StatusBadRequest)
			return
		}
		common.RespondSuccess(w, receipt)
	}
}

// UploadVersion handles POST /api/v1/filecoin/upload
func (h *Handlers) UploadVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.UploadRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.FileID == "" {
			respondBadRequest(w, "file_id is required")
			return
		}
		info, err := h.deps.Services.Storage.UploadVersion(r.Context(), req)
		if err != nil {
			respondWithError(w, err, http.StatusBadGateway)
			return
		}
		common.RespondSuccess(w, info, http.StatusCreated)
	}
}

// StreamPiece handles GET /api/v1/filecoin/stream/{cid}. The body is
// proxied from the CDN, or from the backend when the CDN fails.
func (h *Handlers) StreamPiece() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid := urlParam(r, "cid")
		if !services.IsValidPieceCID(cid) {
			respondBadRequest(w, "invalid piece cid")
			return
		}

		body, err := h.deps.Services.Storage.Stream(r.Context(), cid)
		if err != nil {
			respondWithError(w, err, http.StatusBadGateway)
			return
		}
		defer body.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := io.Copy(w, body); err != nil {
			h.deps.Logger.Debugw("stream copy interrupted", "piece_cid", cid, "error", err)
		}
	}
}
