package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaporshelf/edge/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Locales    *int   `json:"locales,omitempty"`
	Developers *int   `json:"developers,omitempty"`
	Targets    *int   `json:"health_targets,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type cacheStatus struct {
	Release  float64 `json:"release_age_seconds"`
	Presence float64 `json:"presence_age_seconds"`
	Health   float64 `json:"health_age_seconds"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
	Caches      cacheStatus                `json:"caches"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		snap := d.Site.Snapshot()
		locales := snap.Locales.Size()
		developers := len(snap.Developers)
		targets := len(snap.Targets)

		lastReload := d.Site.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"site_data": {
				OK:         d.Site.Loaded(),
				Locales:    &locales,
				Developers: &developers,
				Targets:    &targets,
				LastReload: lastReloadStr,
			},
			"redis": checkRedis(d),
		}

		response := infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
			Caches: cacheStatus{
				Release:  ageSeconds(d.Releases.CacheAge()),
				Presence: ageSeconds(d.Presence.CacheAge()),
				Health:   ageSeconds(d.Health.CacheAge()),
			},
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// ageSeconds flattens a cache age into seconds, -1 when nothing is cached yet.
func ageSeconds(age time.Duration, ok bool) float64 {
	if !ok {
		return -1
	}
	return age.Seconds()
}

func determineServingMode(components map[string]componentStatus) string {
	if site, exists := components["site_data"]; exists && !site.OK {
		return "critical"
	}
	if redis, exists := components["redis"]; exists && !redis.OK && redis.Mode != "disabled" {
		return "degraded"
	}
	return "nominal"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "snapshot-mirroring-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "snapshot-mirroring-disabled",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "snapshot-mirroring-enabled",
	}
}
