package cdphost

import (
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
)

type tabEntry struct {
	ref       dedup.TabRef
	targetID  target.ID
	sessionID string
	loadedURL string
}

// TabRegistry maps CDP page targets to stable integer tab IDs. IDs are handed
// out in the order targets are first seen and never reused.
type TabRegistry struct {
	mu        sync.RWMutex
	byTarget  map[target.ID]*tabEntry
	byID      map[int]target.ID
	bySession map[string]target.ID
	nextID    int
}

func NewTabRegistry() *TabRegistry {
	return &TabRegistry{
		byTarget:  make(map[target.ID]*tabEntry),
		byID:      make(map[int]target.ID),
		bySession: make(map[string]target.ID),
	}
}

// Register records a page target. created is false when the target was
// already known, in which case its URL and title are refreshed.
func (r *TabRegistry) Register(info *target.Info) (dedup.TabRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(info)
}

func (r *TabRegistry) registerLocked(info *target.Info) (dedup.TabRef, bool) {
	if e, ok := r.byTarget[info.TargetID]; ok {
		e.ref.URL = info.URL
		e.ref.Title = info.Title
		return e.ref, false
	}
	r.nextID++
	e := &tabEntry{
		ref:       dedup.TabRef{ID: r.nextID, URL: info.URL, Title: info.Title},
		targetID:  info.TargetID,
		loadedURL: info.URL,
	}
	r.byTarget[info.TargetID] = e
	r.byID[e.ref.ID] = info.TargetID
	return e.ref, true
}

// Update refreshes URL and title of a known target.
func (r *TabRegistry) Update(info *target.Info) (dedup.TabRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byTarget[info.TargetID]
	if !ok {
		return dedup.TabRef{}, false
	}
	e.ref.URL = info.URL
	e.ref.Title = info.Title
	return e.ref, true
}

// Navigated records a main-frame navigation of a target. changed reports
// whether the URL differs from the one previously known.
func (r *TabRegistry) Navigated(targetID target.ID, url string) (ref dedup.TabRef, changed, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.byTarget[targetID]
	if !found {
		return dedup.TabRef{}, false, false
	}
	changed = e.ref.URL != url
	e.ref.URL = url
	return e.ref, changed, true
}

// TakeLoaded marks the current URL of a target as loaded. changed reports
// whether it differs from the URL of the previous load.
func (r *TabRegistry) TakeLoaded(targetID target.ID) (ref dedup.TabRef, changed, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.byTarget[targetID]
	if !found {
		return dedup.TabRef{}, false, false
	}
	changed = e.ref.URL != e.loadedURL
	e.loadedURL = e.ref.URL
	return e.ref, changed, true
}

// Remove forgets a target and any session bound to it.
func (r *TabRegistry) Remove(targetID target.ID) (dedup.TabRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byTarget[targetID]
	if !ok {
		return dedup.TabRef{}, false
	}
	r.removeLocked(e)
	return e.ref, true
}

func (r *TabRegistry) removeLocked(e *tabEntry) {
	delete(r.byTarget, e.targetID)
	delete(r.byID, e.ref.ID)
	if e.sessionID != "" {
		delete(r.bySession, e.sessionID)
	}
}

// Sync reconciles the registry with a full page-target listing. Unknown
// targets are registered, vanished ones removed. The returned refs follow
// the order of infos.
func (r *TabRegistry) Sync(infos []*target.Info) []dedup.TabRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[target.ID]bool, len(infos))
	refs := make([]dedup.TabRef, 0, len(infos))
	for _, info := range infos {
		ref, _ := r.registerLocked(info)
		seen[info.TargetID] = true
		refs = append(refs, ref)
	}
	for id, e := range r.byTarget {
		if !seen[id] {
			r.removeLocked(e)
		}
	}
	return refs
}

// Lookup resolves a tab ID to its target.
func (r *TabRegistry) Lookup(id int) (target.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// BindSession associates a flat CDP session with a target.
func (r *TabRegistry) BindSession(targetID target.ID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byTarget[targetID]
	if !ok {
		return false
	}
	e.sessionID = sessionID
	r.bySession[sessionID] = targetID
	return true
}

// UnbindSession drops a session mapping after detach.
func (r *TabRegistry) UnbindSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	targetID, ok := r.bySession[sessionID]
	if !ok {
		return
	}
	delete(r.bySession, sessionID)
	if e, ok := r.byTarget[targetID]; ok && e.sessionID == sessionID {
		e.sessionID = ""
	}
}

// TargetForSession resolves the target behind a session.
func (r *TabRegistry) TargetForSession(sessionID string) (target.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.bySession[sessionID]
	return t, ok
}

// HasSession reports whether load events are being received for the target.
func (r *TabRegistry) HasSession(targetID target.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byTarget[targetID]
	return ok && e.sessionID != ""
}

// ClearSessions forgets every session binding, e.g. after a reconnect.
func (r *TabRegistry) ClearSessions() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byTarget {
		e.sessionID = ""
	}
	r.bySession = make(map[string]target.ID)
}

func (r *TabRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTarget)
}
