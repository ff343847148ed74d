package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTrailingSlash(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "https://x.com/a", Normalize("https://x.com/a/", s))
	assert.Equal(t, "https://x.com/", Normalize("https://x.com/", s))
	assert.Equal(t, "https://x.com/", Normalize("https://x.com", s))
}

func TestNormalizeHash(t *testing.T) {
	ignore := Settings{IgnoreHash: true}
	assert.Equal(t, Normalize("https://a.com/page#one", ignore), Normalize("https://a.com/page#two", ignore))
	assert.Equal(t, "https://a.com/page", Normalize("https://a.com/page#one", ignore))

	keep := Settings{IgnoreHash: false}
	assert.NotEqual(t, Normalize("https://a.com/page#one", keep), Normalize("https://a.com/page#two", keep))
}

func TestNormalizeSearch(t *testing.T) {
	ignore := Settings{IgnoreSearch: true}
	assert.Equal(t, Normalize("https://a.com/p?x=1", ignore), Normalize("https://a.com/p?x=2", ignore))
	assert.Equal(t, "https://a.com/p", Normalize("https://a.com/p?x=1", ignore))

	keep := Settings{IgnoreSearch: false}
	assert.NotEqual(t, Normalize("https://a.com/p?x=1", keep), Normalize("https://a.com/p?x=2", keep))
}

func TestNormalizeCanonicalForm(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "https://example.com/Path", Normalize("HTTPS://Example.COM:443/Path", s))
	assert.Equal(t, "http://example.com:8080/", Normalize("http://example.com:8080", s))
}

func TestNormalizeKeepsEscapedPath(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "https://x.com/a%2Fb", Normalize("https://x.com/a%2Fb/", s))
	assert.Equal(t, "https://x.com/a%2Fb", Normalize("https://x.com/a%2Fb", s))
	assert.NotEqual(t, Normalize("https://x.com/a%2Fb", s), Normalize("https://x.com/a/b", s))
}

func TestNormalizeKeepsEmptyQuery(t *testing.T) {
	keep := Settings{IgnoreSearch: false}
	assert.Equal(t, "https://x.com/a?", Normalize("https://x.com/a?", keep))
	assert.NotEqual(t, Normalize("https://x.com/a?", keep), Normalize("https://x.com/a", keep))

	ignore := Settings{IgnoreSearch: true}
	assert.Equal(t, Normalize("https://x.com/a?", ignore), Normalize("https://x.com/a", ignore))
}

func TestNormalizeFailOpen(t *testing.T) {
	s := DefaultSettings()
	for _, raw := range []string{"not a url", "http://[::1", "", "example.com/path/"} {
		assert.Equal(t, raw, Normalize(raw, s), "input %q", raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://x.com/a/",
		"https://x.com/",
		"https://x.com",
		"https://a.com/p?x=1#frag",
		"http://Example.com:80/docs/index.html?q=go&page=2",
		"https://sub.example.com/a/b/c/",
		"mailto:someone@example.com",
		"ftp://files.example.com/pub/",
		"https://x.com/a%2Fb/",
		"https://x.com/a?",
	}
	settings := []Settings{
		DefaultSettings(),
		{IgnoreHash: true, IgnoreSearch: true},
		{},
	}
	for _, s := range settings {
		for _, raw := range inputs {
			once := Normalize(raw, s)
			assert.Equal(t, once, Normalize(once, s), "input %q settings %+v", raw, s)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	cases := map[string]bool{
		"":                          false,
		"about:blank":               false,
		"chrome://settings":         false,
		"chrome-extension://abc/x":  false,
		"devtools://devtools/x":     false,
		"moz-extension://abc":       false,
		"file:///tmp/a.html":        false,
		"data:text/plain,hi":        false,
		"javascript:void(0)":        false,
		"blob:https://a.com/uuid":   false,
		"https://a.com":             true,
		"http://localhost:8080/app": true,
	}
	for raw, want := range cases {
		assert.Equal(t, want, IsValidURL(raw), "IsValidURL(%q)", raw)
	}
}

func TestIsDomainExcluded(t *testing.T) {
	s := Settings{ExcludedDomains: []string{"example.com"}}
	assert.True(t, IsDomainExcluded("https://example.com/a", s))
	assert.True(t, IsDomainExcluded("https://sub.example.com", s))
	assert.True(t, IsDomainExcluded("https://SUB.Example.com", s))
	assert.False(t, IsDomainExcluded("https://notexample.com", s))
	assert.False(t, IsDomainExcluded("https://example.com.evil.net", s))
	assert.False(t, IsDomainExcluded("not a url", s))
	assert.False(t, IsDomainExcluded("http://[::1", s))
}

func TestTruncate(t *testing.T) {
	short := "https://a.com/"
	assert.Equal(t, short, Truncate(short, NotificationMaxLen))

	long := "https://example.com/" + "abcdefghijklmnopqrstuvwxyz0123456789"
	got := Truncate(long, NotificationMaxLen)
	assert.Len(t, []rune(got), NotificationMaxLen)
	assert.Equal(t, long[:47]+"...", got)

	assert.Equal(t, "Closed duplicate tab:\n"+got, NotificationMessage(long))
}
