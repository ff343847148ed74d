package dedup

// TabRef is a read-only snapshot of an open tab as reported by the host.
// IDs are assigned by the host and grow with creation time.
type TabRef struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// TabSummary is the member shape reported inside a DuplicateGroup.
type TabSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// DuplicateGroup is a set of two or more tabs sharing a normalized URL.
type DuplicateGroup struct {
	URL   string       `json:"url"`
	Tabs  []TabSummary `json:"tabs"`
	Count int          `json:"count"`
}

// Stats summarizes the live tab set.
type Stats struct {
	TotalTabs     int `json:"totalTabs"`
	DuplicateTabs int `json:"duplicateTabs"`
}

// CloseDecision names the survivor of a group and the tabs to close.
type CloseDecision struct {
	URL   string
	Keep  TabSummary
	Close []TabSummary
}

// CloseResult is returned by a bulk close.
type CloseResult struct {
	ClosedCount int `json:"closedCount"`
}
