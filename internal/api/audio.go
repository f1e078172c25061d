package api

import (
	"net/http"

	"versions/relay/internal/common"
)

// ListAudioFiles handles GET /api/v1/audio/files
func (h *Handlers) ListAudioFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, h.deps.Services.Audio.ListFiles(r.Context()))
	}
}

// AudioMetadata handles GET /api/v1/audio/{file_id}/metadata. A failed
// lookup still answers 200 with fallback metadata.
func (h *Handlers) AudioMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID := urlParam(r, "file_id")
		if fileID == "" {
			respondBadRequest(w, "file_id is required")
			return
		}
		common.RespondSuccess(w, h.deps.Services.Audio.Metadata(r.Context(), fileID))
	}
}

// AudioStream handles GET /api/v1/audio/{file_id}/stream
func (h *Handlers) AudioStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, h.deps.Services.Audio.StreamURL(urlParam(r, "file_id")), http.StatusTemporaryRedirect)
	}
}
