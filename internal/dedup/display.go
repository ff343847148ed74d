package dedup

import "strings"

// NotificationMaxLen bounds the URL shown in a closure notification.
const NotificationMaxLen = 50

// Truncate shortens s to at most max runes, replacing the tail with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// NotificationMessage is the body shown after a duplicate tab was closed.
func NotificationMessage(url string) string {
	return "Closed duplicate tab:\n" + Truncate(url, NotificationMaxLen)
}

// ShortURLMaxLen bounds the URL shown in duplicate listings.
const ShortURLMaxLen = 40

// ShortURL renders host and path of raw for listings, falling back to the
// raw string when it does not parse.
func ShortURL(raw string) string {
	display := raw
	if u, ok := parseAbsolute(raw); ok && u.Host != "" {
		path := u.EscapedPath()
		if path == "" {
			path = "/"
		}
		display = strings.ToLower(u.Hostname()) + path
	}
	return Truncate(display, ShortURLMaxLen)
}
