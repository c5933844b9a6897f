package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaporshelf/edge/internal/httpserver/deps"
	"github.com/vaporshelf/edge/internal/upstream/presence"
)

type discordResponse struct {
	Success    bool                 `json:"success"`
	Developers []presence.Developer `json:"developers"`
	Cached     bool                 `json:"cached"`
	CacheAge   float64              `json:"cacheAge"`
	Timestamp  string               `json:"timestamp"`
	Error      string               `json:"error,omitempty"`
}

// Discord serves the developer roster with live presence.
// A single identity's failure degrades only that entry; the response is a 500
// only when the whole roster lookup failed.
func Discord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		devs, meta := d.Presence.Get(r.Context())
		if devs == nil {
			devs = []presence.Developer{}
		}

		w.Header().Set("Content-Type", "application/json")
		if !meta.Success {
			w.WriteHeader(http.StatusInternalServerError)
		}

		_ = json.NewEncoder(w).Encode(discordResponse{
			Success:    meta.Success,
			Developers: devs,
			Cached:     meta.Cached,
			CacheAge:   meta.CacheAge,
			Timestamp:  d.TimeNow().UTC().Format(time.RFC3339),
			Error:      meta.Err,
		})
	}
}
