package dedup

import "sort"

type group struct {
	key  string
	tabs []TabRef
}

// groupTabs buckets tabs by normalized URL, keeping first-seen order of both
// groups and members.
func groupTabs(tabs []TabRef, s Settings, keep func(TabRef) bool) []group {
	index := make(map[string]int)
	var groups []group
	for _, tab := range tabs {
		if !keep(tab) {
			continue
		}
		key := Normalize(tab.URL, s)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].tabs = append(groups[i].tabs, tab)
	}
	return groups
}

// FindDuplicate returns the first tab in all, other than candidate, whose
// normalized URL matches the candidate's.
func FindDuplicate(candidate TabRef, all []TabRef, s Settings) (TabRef, bool) {
	if !s.Enabled {
		return TabRef{}, false
	}
	if !IsValidURL(candidate.URL) || IsDomainExcluded(candidate.URL, s) {
		return TabRef{}, false
	}

	want := Normalize(candidate.URL, s)
	for _, tab := range all {
		if tab.ID == candidate.ID {
			continue
		}
		if !IsValidURL(tab.URL) {
			continue
		}
		if Normalize(tab.URL, s) == want {
			return tab, true
		}
	}
	return TabRef{}, false
}

// ScanAllDuplicates groups valid, non-excluded tabs by normalized URL and
// returns every group with at least two members.
func ScanAllDuplicates(all []TabRef, s Settings) []DuplicateGroup {
	groups := groupTabs(all, s, func(t TabRef) bool {
		return IsValidURL(t.URL) && !IsDomainExcluded(t.URL, s)
	})

	out := make([]DuplicateGroup, 0)
	for _, g := range groups {
		if len(g.tabs) < 2 {
			continue
		}
		members := make([]TabSummary, 0, len(g.tabs))
		for _, t := range g.tabs {
			members = append(members, TabSummary{ID: t.ID, Title: t.Title})
		}
		out = append(out, DuplicateGroup{URL: g.key, Tabs: members, Count: len(members)})
	}
	return out
}

// PlanCloseAll keeps the highest-id member of each group and marks the rest
// for closing. Input groups are not modified.
func PlanCloseAll(groups []DuplicateGroup) []CloseDecision {
	decisions := make([]CloseDecision, 0, len(groups))
	for _, g := range groups {
		if len(g.Tabs) < 2 {
			continue
		}
		sorted := make([]TabSummary, len(g.Tabs))
		copy(sorted, g.Tabs)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
		decisions = append(decisions, CloseDecision{
			URL:   g.URL,
			Keep:  sorted[0],
			Close: sorted[1:],
		})
	}
	return decisions
}

// ComputeStats counts all tabs and the extra copies beyond one per normalized
// URL. The exclusion list is not applied here.
func ComputeStats(all []TabRef, s Settings) Stats {
	groups := groupTabs(all, s, func(t TabRef) bool { return IsValidURL(t.URL) })
	dupes := 0
	for _, g := range groups {
		if len(g.tabs) > 1 {
			dupes += len(g.tabs) - 1
		}
	}
	return Stats{TotalTabs: len(all), DuplicateTabs: dupes}
}
