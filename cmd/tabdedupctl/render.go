package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	dupStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	cleanStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4caf50"))
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderStats(s dedup.Stats) string {
	dup := cleanStyle
	if s.DuplicateTabs > 0 {
		dup = dupStyle
	}
	return fmt.Sprintf("%s %s\n%s %s\n",
		labelStyle.Render("Total tabs:    "), valueStyle.Render(fmt.Sprint(s.TotalTabs)),
		labelStyle.Render("Duplicate tabs:"), dup.Render(fmt.Sprint(s.DuplicateTabs)),
	)
}

func renderGroups(groups []dedup.DuplicateGroup) string {
	if len(groups) == 0 {
		return "✨ No duplicate tabs found\n"
	}
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "%s  %s\n", urlStyle.Render(dedup.ShortURL(g.URL)), dimStyle.Render(fmt.Sprintf("%d duplicate tabs", g.Count)))
		for _, t := range g.Tabs {
			fmt.Fprintf(&b, "    #%d %s\n", t.ID, t.Title)
		}
	}
	return b.String()
}

func renderTabs(tabs []dedup.TabRef) string {
	var b strings.Builder
	for _, t := range tabs {
		fmt.Fprintf(&b, "%5d  %s  %s\n", t.ID, urlStyle.Render(dedup.ShortURL(t.URL)), dimStyle.Render(t.Title))
	}
	return b.String()
}

func renderSettings(s dedup.Settings) string {
	var b strings.Builder
	row := func(k string, v any) {
		fmt.Fprintf(&b, "%s %v\n", labelStyle.Render(fmt.Sprintf("%-17s", k+":")), v)
	}
	row("enabled", s.Enabled)
	row("ignoreHash", s.IgnoreHash)
	row("ignoreSearch", s.IgnoreSearch)
	row("showNotification", s.ShowNotification)
	row("excludedDomains", strings.Join(s.ExcludedDomains, ", "))
	return b.String()
}

func renderEnabled(enabled bool) string {
	if enabled {
		return cleanStyle.Render("Automatic deduplication enabled")
	}
	return dupStyle.Render("Automatic deduplication disabled")
}

func closeMessage(n int) string {
	if n > 0 {
		return fmt.Sprintf("Closed %d duplicate tab(s)", n)
	}
	return "No duplicate tabs to close"
}
