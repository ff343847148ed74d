package types

import "github.com/dgnsrekt/tabdedup/internal/dedup"

// TabEventKind identifies a tab lifecycle change reported by the host.
type TabEventKind string

const (
	TabCreated TabEventKind = "created"
	TabUpdated TabEventKind = "updated"
	TabRemoved TabEventKind = "removed"
)

// Load status values carried by TabUpdated events.
const (
	StatusLoading  = "loading"
	StatusComplete = "complete"
)

// TabEvent is a single tab lifecycle notification. URLChanged and Status are
// only meaningful for TabUpdated.
type TabEvent struct {
	Kind       TabEventKind
	Tab        dedup.TabRef
	URLChanged bool
	Status     string
}
