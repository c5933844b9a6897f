package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaporshelf/edge/internal/httpserver/deps"
	"github.com/vaporshelf/edge/internal/upstream/release"
)

type githubResponse struct {
	Success   bool         `json:"success"`
	Data      release.Info `json:"data"`
	Cached    bool         `json:"cached"`
	CacheAge  float64      `json:"cacheAge"`
	Timestamp string       `json:"timestamp"`
	Error     string       `json:"error,omitempty"`
}

// Github serves the latest desktop release info, cached per TTL.
func Github(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, meta := d.Releases.Get(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !meta.Success {
			w.WriteHeader(http.StatusInternalServerError)
		}

		_ = json.NewEncoder(w).Encode(githubResponse{
			Success:   meta.Success,
			Data:      info,
			Cached:    meta.Cached,
			CacheAge:  meta.CacheAge,
			Timestamp: d.TimeNow().UTC().Format(time.RFC3339),
			Error:     meta.Err,
		})
	}
}
