package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vaporshelf/edge/internal/httpserver/deps"
	"github.com/vaporshelf/edge/internal/upstream/health"
)

type debugCheckResponse struct {
	APIs     []health.Record `json:"apis"`
	Cached   bool            `json:"cached"`
	CacheAge float64         `json:"cacheAge"`
}

// DebugCheck probes the monitored upstream endpoints. The route is mounted
// behind the shared-secret middleware; this handler only reports.
func DebugCheck(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, meta := d.Health.Get(r.Context())
		if recs == nil {
			recs = []health.Record{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		_ = json.NewEncoder(w).Encode(debugCheckResponse{
			APIs:     recs,
			Cached:   meta.Cached,
			CacheAge: meta.CacheAge,
		})
	}
}
