package api

import (
	"net/http"
	"strings"

	"versions/relay/internal/common"
	"versions/relay/internal/models/dtos"
)

// GetProfile handles GET /api/v1/farcaster/profile/{fid}
func (h *Handlers) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fid, ok := parseFID(urlParam(r, "fid"))
		if !ok {
			respondBadRequest(w, "fid must be a positive integer")
			return
		}
		common.RespondSuccess(w, h.deps.Services.Social.Profile(r.Context(), fid))
	}
}

// GetProfiles handles POST /api/v1/farcaster/profiles
func (h *Handlers) GetProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.ProfilesRequest
		if !decodeBody(w, r, &req) {
			return
		}
		common.RespondSuccess(w, h.deps.Services.Social.Profiles(r.Context(), req.FIDs))
	}
}

// Cast handles POST /api/v1/farcaster/cast
func (h *Handlers) Cast() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CastRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			respondBadRequest(w, "text is required")
			return
		}

		result, err := h.deps.Services.Social.Cast(r.Context(), req, "")
		if err != nil {
			respondWithError(w, err, http.StatusBadGateway)
			return
		}
		common.RespondSuccess(w, result, http.StatusCreated)
	}
}

// CastDiscovery handles POST /api/v1/farcaster/cast/discovery
func (h *Handlers) CastDiscovery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var version dtos.VersionInfo
		if !decodeBody(w, r, &version) {
			return
		}
		if version.ID == "" {
			respondBadRequest(w, "id is required")
			return
		}

		result, err := h.deps.Services.Social.CastVersionDiscovery(r.Context(), version)
		if err != nil {
			respondWithError(w, err, http.StatusBadGateway)
			return
		}
		common.RespondSuccess(w, result, http.StatusCreated)
	}
}

// GetRecommendations handles GET /api/v1/farcaster/recommendations?fid=
func (h *Handlers) GetRecommendations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fid, ok := parseFID(r.URL.Query().Get("fid"))
		if !ok {
			respondBadRequest(w, "fid query parameter must be a positive integer")
			return
		}
		common.RespondSuccess(w, h.deps.Services.Social.Recommendations(r.Context(), fid))
	}
}

// GetDiscussions handles GET /api/v1/versions/{id}/discussions
func (h *Handlers) GetDiscussions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, h.deps.Services.Social.Discussions(r.Context(), urlParam(r, "id")))
	}
}

// SocialStatus handles GET /api/v1/farcaster/status
func (h *Handlers) SocialStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, h.deps.Services.Social.Status())
	}
}

// SignOut handles POST /api/v1/farcaster/signout
func (h *Handlers) SignOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.deps.Services.Social.SignOut()
		common.RespondSuccess(w, map[string]bool{"signed_out": true})
	}
}
