package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/vaporshelf/edge/internal/logger"
)

// SecretHeader is the shared-secret header guarding internal API routes.
const SecretHeader = "X-Debug-Secret"

// RequireSecret gates a route behind a shared-secret header. A missing or
// mismatched secret answers with a plain 404, deliberately indistinguishable
// from an unknown route. An empty configured secret disables the route.
func RequireSecret(secret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.NotFound(w, r)
				return
			}

			got := r.Header.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				log.Debug("debug secret mismatch",
					logger.String("path", r.URL.Path),
					logger.String("remote_ip", r.RemoteAddr))
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
