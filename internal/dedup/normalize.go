package dedup

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const canonicalFlags = purell.FlagLowercaseScheme | purell.FlagLowercaseHost | purell.FlagRemoveDefaultPort

// Schemes whose empty path serializes as "/".
var hierarchicalSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// invalidPrefixes are browser-internal, local, and inline URL schemes that are
// never deduplicated. Matching is a literal prefix check.
var invalidPrefixes = []string{
	"about:",
	"chrome:",
	"chrome-extension:",
	"devtools:",
	"moz-extension:",
	"file:",
	"data:",
	"javascript:",
	"blob:",
}

// Normalize returns the comparison key for raw under s. Input that does not
// parse as an absolute URL is returned unchanged.
func Normalize(raw string, s Settings) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		return raw
	}

	if s.IgnoreHash {
		u.Fragment = ""
		u.RawFragment = ""
	}
	if s.IgnoreSearch {
		u.RawQuery = ""
		u.ForceQuery = false
	}
	if u.Opaque == "" && u.Path == "" && hierarchicalSchemes[strings.ToLower(u.Scheme)] {
		u.Path = "/"
		u.RawPath = ""
	}

	canonicalizeOrigin(u)

	normalized := u.String()
	if strings.HasSuffix(normalized, "/") && u.Path != "/" {
		normalized = normalized[:len(normalized)-1]
	}
	return normalized
}

// IsValidURL reports whether raw is a candidate for deduplication.
func IsValidURL(raw string) bool {
	if raw == "" {
		return false
	}
	for _, prefix := range invalidPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return false
		}
	}
	return true
}

// IsDomainExcluded reports whether the host of raw equals, or is a subdomain
// of, one of the excluded domains. Unparseable input is never excluded.
func IsDomainExcluded(raw string, s Settings) bool {
	u, ok := parseAbsolute(raw)
	if !ok {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range s.ExcludedDomains {
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// canonicalizeOrigin lowercases scheme and host and drops a default port.
// Only the origin goes through purell; the path keeps its original escaping.
func canonicalizeOrigin(u *url.URL) {
	if u.Host == "" {
		return
	}
	canon := purell.NormalizeURL(&url.URL{Scheme: u.Scheme, Host: u.Host}, canonicalFlags)
	origin, err := url.Parse(canon)
	if err != nil || origin.Host == "" {
		return
	}
	u.Scheme = origin.Scheme
	u.Host = origin.Host
}

func parseAbsolute(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}
