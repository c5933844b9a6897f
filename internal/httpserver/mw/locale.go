package mw

import (
	"context"
	"net/http"

	"github.com/vaporshelf/edge/internal/locale"
	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/sitecfg"
)

type localeCtxKey struct{}

// LocaleHeader carries the resolved locale to the render layer.
const LocaleHeader = "X-Site-Locale"

// Locale runs the locale resolver ahead of routing. Root-path requests with a
// usable geography or language signal are redirected to their locale-qualified
// path; everything else passes through, page paths annotated with the
// resolved locale. API, asset and file-like paths are untouched.
func Locale(resolver *locale.Resolver, site *sitecfg.Registry, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set := site.Snapshot().Locales
			decision := resolver.Resolve(r.URL.Path, r.Header, set)

			if decision.Action == locale.Redirect {
				log.Debug("locale redirect",
					logger.String("path", r.URL.Path),
					logger.String("locale", decision.Locale),
					logger.String("location", decision.Location))
				http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
				return
			}

			if decision.Locale != "" {
				w.Header().Set(LocaleHeader, decision.Locale)
				r = r.WithContext(context.WithValue(r.Context(), localeCtxKey{}, decision.Locale))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LocaleFromContext returns the locale resolved for this request, if any.
func LocaleFromContext(ctx context.Context) (string, bool) {
	tag, ok := ctx.Value(localeCtxKey{}).(string)
	return tag, ok
}
