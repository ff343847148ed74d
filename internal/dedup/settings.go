package dedup

import (
	"slices"
	"strings"
)

// Settings controls which tabs count as duplicates and how closures are reported.
type Settings struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	IgnoreHash       bool     `json:"ignoreHash" yaml:"ignore_hash"`
	IgnoreSearch     bool     `json:"ignoreSearch" yaml:"ignore_search"`
	ShowNotification bool     `json:"showNotification" yaml:"show_notification"`
	ExcludedDomains  []string `json:"excludedDomains" yaml:"excluded_domains"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		IgnoreHash:       true,
		IgnoreSearch:     false,
		ShowNotification: true,
		ExcludedDomains:  []string{},
	}
}

// Patch is a partial Settings update. Nil fields are left untouched.
type Patch struct {
	Enabled          *bool     `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	IgnoreHash       *bool     `json:"ignoreHash,omitempty" yaml:"ignore_hash,omitempty"`
	IgnoreSearch     *bool     `json:"ignoreSearch,omitempty" yaml:"ignore_search,omitempty"`
	ShowNotification *bool     `json:"showNotification,omitempty" yaml:"show_notification,omitempty"`
	ExcludedDomains  *[]string `json:"excludedDomains,omitempty" yaml:"excluded_domains,omitempty"`
}

// PatchFrom returns a Patch that sets every field to the values in s.
func PatchFrom(s Settings) Patch {
	domains := slices.Clone(s.ExcludedDomains)
	return Patch{
		Enabled:          &s.Enabled,
		IgnoreHash:       &s.IgnoreHash,
		IgnoreSearch:     &s.IgnoreSearch,
		ShowNotification: &s.ShowNotification,
		ExcludedDomains:  &domains,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Enabled == nil && p.IgnoreHash == nil && p.IgnoreSearch == nil &&
		p.ShowNotification == nil && p.ExcludedDomains == nil
}

// Merge returns a copy of s with the non-nil fields of p applied.
// The receiver is never modified.
func (s Settings) Merge(p Patch) Settings {
	out := s.Clone()
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.IgnoreHash != nil {
		out.IgnoreHash = *p.IgnoreHash
	}
	if p.IgnoreSearch != nil {
		out.IgnoreSearch = *p.IgnoreSearch
	}
	if p.ShowNotification != nil {
		out.ShowNotification = *p.ShowNotification
	}
	if p.ExcludedDomains != nil {
		out.ExcludedDomains = CleanDomains(*p.ExcludedDomains)
	}
	return out
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.ExcludedDomains = slices.Clone(s.ExcludedDomains)
	if out.ExcludedDomains == nil {
		out.ExcludedDomains = []string{}
	}
	return out
}

// CleanDomains trims and lower-cases entries and drops empty ones.
func CleanDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}
