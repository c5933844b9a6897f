package locale

import "strings"

// Set is an immutable snapshot of the locale configuration: the supported
// tags, the default tag and the country to locale table.
//
// A Set is rebuilt wholesale on every site data reload; lookups never mutate it.
type Set struct {
	def       string
	supported map[string]struct{}
	countries map[string]string
}

// NewSet builds a Set from the configured values.
// Tags are lowercased, country codes uppercased. Country entries pointing at
// an unsupported locale are dropped so an unsupported tag can never leave the
// resolver.
func NewSet(def string, supported []string, countries map[string]string) Set {
	s := Set{
		def:       strings.ToLower(def),
		supported: make(map[string]struct{}, len(supported)),
		countries: make(map[string]string, len(countries)),
	}
	for _, tag := range supported {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			s.supported[tag] = struct{}{}
		}
	}
	for code, tag := range countries {
		code = strings.ToUpper(strings.TrimSpace(code))
		tag = strings.ToLower(strings.TrimSpace(tag))
		if code == "" || tag == "" {
			continue
		}
		if _, ok := s.supported[tag]; !ok {
			continue
		}
		s.countries[code] = tag
	}
	return s
}

// Default returns the configured default locale tag.
func (s Set) Default() string { return s.def }

// Supported reports whether tag is a member of the supported set.
func (s Set) Supported(tag string) bool {
	_, ok := s.supported[strings.ToLower(tag)]
	return ok
}

// ForCountry returns the locale mapped to a two-letter country code.
// Absence of an entry is not an error, it just means "no opinion".
func (s Set) ForCountry(code string) (string, bool) {
	tag, ok := s.countries[strings.ToUpper(code)]
	return tag, ok
}

// Size returns the number of supported locales.
func (s Set) Size() int { return len(s.supported) }

// CountryCount returns the number of country mappings.
func (s Set) CountryCount() int { return len(s.countries) }
