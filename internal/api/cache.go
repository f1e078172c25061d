package api

import (
	"net/http"

	"versions/relay/internal/common"
	"versions/relay/internal/models/dtos"
)

// CacheStats handles GET /api/v1/cache/stats
func (h *Handlers) CacheStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, cacheStats(h.deps.Caches))
	}
}

// ClearCaches handles POST /api/v1/cache/clear. ?name= clears a single
// cache.
func (h *Handlers) ClearCaches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		cleared := []string{}
		for _, c := range h.deps.Caches {
			if name != "" && c.Name() != name {
				continue
			}
			c.Clear()
			cleared = append(cleared, c.Name())
		}
		if name != "" && len(cleared) == 0 {
			common.RespondError(w, nil, "Unknown cache: "+name, http.StatusNotFound)
			return
		}

		h.deps.Logger.Infow("caches cleared", "caches", cleared)
		common.RespondSuccess(w, map[string][]string{"cleared": cleared})
	}
}

func cacheStats(caches []common.CacheHandle) dtos.CacheStats {
	stats := make(dtos.CacheStats, len(caches))
	for _, c := range caches {
		stats[c.Name()] = c.Size()
	}
	return stats
}
