package locale

import (
	"net/http"
	"strings"
)

// Action is the outcome kind of a resolution.
type Action int

const (
	// PassThrough leaves the request path untouched.
	PassThrough Action = iota
	// Redirect sends the client to a locale-qualified path.
	Redirect
)

// Decision is the total outcome of resolving one request.
// Locale is always set; Location only when Action == Redirect.
type Decision struct {
	Action   Action
	Locale   string
	Location string
}

// GeoHeaders is the fixed priority order of platform headers carrying a
// two-letter country code. First non-empty wins. These are best-effort,
// spoofable hints and must never gate access control.
var GeoHeaders = []string{
	"CF-IPCountry",
	"X-Vercel-IP-Country",
	"X-Country-Code",
}

// Resolver maps inbound request paths to locale decisions.
// It holds no per-request state; the locale Set is passed per call so a hot
// reload of the site data takes effect immediately.
type Resolver struct {
	apiPrefix    string
	assetsPrefix string
}

func NewResolver(apiPrefix, assetsPrefix string) *Resolver {
	return &Resolver{
		apiPrefix:    apiPrefix,
		assetsPrefix: assetsPrefix,
	}
}

// Resolve applies the decision table:
//
//  1. API, asset and dotted paths pass through untouched.
//  2. Paths already starting with /<supported-locale> pass through unchanged.
//  3. Root path: geography header via the country table wins, then the
//     Accept-Language primary subtag, each producing a redirect.
//  4. Everything else passes through annotated with the negotiated locale,
//     falling back to the default.
//
// Resolution always terminates in a decision. Malformed or missing headers
// count as absence, never as errors.
func (rs *Resolver) Resolve(path string, header http.Header, set Set) Decision {
	if rs.bypass(path) {
		return Decision{Action: PassThrough}
	}

	if tag, ok := localePrefix(path, set); ok {
		return Decision{Action: PassThrough, Locale: tag}
	}

	if path == "/" {
		if code := geoSignal(header); code != "" {
			if tag, ok := set.ForCountry(code); ok {
				return Decision{Action: Redirect, Locale: tag, Location: "/" + tag}
			}
			// Known country, no mapping: fall through to language negotiation.
		}
		if tag, ok := preferredLanguage(header, set); ok {
			return Decision{Action: Redirect, Locale: tag, Location: "/" + tag}
		}
		return Decision{Action: PassThrough, Locale: set.Default()}
	}

	// Non-root unqualified page path: annotate only, the render layer
	// prefixes with the resolved locale itself.
	if tag, ok := preferredLanguage(header, set); ok {
		return Decision{Action: PassThrough, Locale: tag}
	}
	return Decision{Action: PassThrough, Locale: set.Default()}
}

// bypass reports whether the path is reserved for APIs or assets, or looks
// like a file (contains a dot).
func (rs *Resolver) bypass(path string) bool {
	if rs.apiPrefix != "" && strings.HasPrefix(path, rs.apiPrefix) {
		return true
	}
	if rs.assetsPrefix != "" && strings.HasPrefix(path, rs.assetsPrefix) {
		return true
	}
	return strings.Contains(path, ".")
}

// localePrefix checks for an exact /<tag> first segment match. Tags are
// stored lowercase, so an uppercase segment like /EN is not qualified and
// falls through to normal page-path handling.
func localePrefix(path string, set Set) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	seg := trimmed
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		seg = trimmed[:i]
	}
	if seg == "" || seg != strings.ToLower(seg) {
		return "", false
	}
	if set.Supported(seg) {
		return seg, true
	}
	return "", false
}

// geoSignal extracts the first non-empty country code from the geo headers.
func geoSignal(header http.Header) string {
	for _, name := range GeoHeaders {
		if v := strings.TrimSpace(header.Get(name)); v != "" {
			return strings.ToUpper(v)
		}
	}
	return ""
}

// preferredLanguage takes the first Accept-Language entry, strips quality
// and region/script subtags and checks it against the supported set.
func preferredLanguage(header http.Header, set Set) (string, bool) {
	raw := header.Get("Accept-Language")
	if raw == "" {
		return "", false
	}
	first := raw
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	first = strings.TrimSpace(first)
	if i := strings.IndexByte(first, '-'); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, '_'); i >= 0 {
		first = first[:i]
	}
	first = strings.ToLower(first)
	if first == "" {
		return "", false
	}
	if set.Supported(first) {
		return first, true
	}
	return "", false
}
