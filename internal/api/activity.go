package api

import (
	"net/http"
	"strconv"

	"versions/relay/internal/common"
	"versions/relay/internal/db/repositories"
	"versions/relay/internal/models/dtos"
)

const maxActivityLimit = 500

// ListActivity handles GET /api/v1/activity?kind=&subject=&limit=
func (h *Handlers) ListActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := h.deps.Repo.Activity
		if repo == nil {
			common.RespondError(w, nil, "Activity log is not configured", http.StatusServiceUnavailable)
			return
		}

		q := r.URL.Query()
		filter := repositories.ActivityFilter{Kind: q.Get("kind"), Subject: q.Get("subject")}
		if raw := q.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				respondBadRequest(w, "limit must be a positive integer")
				return
			}
			filter.Limit = min(limit, maxActivityLimit)
		}

		entries, err := repo.List(r.Context(), filter)
		if err != nil {
			h.deps.Logger.Errorw("failed to list activity", "error", err)
			common.RespondError(w, nil, "Failed to list activity")
			return
		}

		resp := dtos.ActivityLog{Entries: make([]dtos.ActivityEntry, 0, len(entries))}
		for _, e := range entries {
			resp.Entries = append(resp.Entries, dtos.ActivityEntry{
				ID:        e.ID,
				Kind:      e.Kind,
				Subject:   e.Subject,
				Status:    e.Status,
				Detail:    e.Detail,
				Error:     e.Error,
				CreatedAt: e.CreatedAt,
			})
		}
		if filter.Kind != "" {
			counts, err := repo.CountByStatus(r.Context(), filter.Kind)
			if err != nil {
				h.deps.Logger.Warnw("failed to count activity", "kind", filter.Kind, "error", err)
			} else {
				resp.Counts = counts
			}
		}
		common.RespondSuccess(w, resp)
	}
}
