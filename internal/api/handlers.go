package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds JSON request bodies. Uploads carry file content.
const maxBodyBytes = 64 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondBadRequest(w, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseFID accepts positive decimal fids only.
func parseFID(raw string) (uint64, bool) {
	fid, err := strconv.ParseUint(raw, 10, 64)
	return fid, err == nil && fid > 0
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
