package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/settings"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

type fakeHost struct {
	mu        sync.Mutex
	tabs      []dedup.TabRef
	closed    []int
	activated []int
	failClose map[int]bool
	listErr   error
}

func newFakeHost(tabs ...dedup.TabRef) *fakeHost {
	return &fakeHost{tabs: tabs, failClose: map[int]bool{}}
}

func (h *fakeHost) ListTabs(context.Context) ([]dedup.TabRef, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listErr != nil {
		return nil, h.listErr
	}
	return append([]dedup.TabRef(nil), h.tabs...), nil
}

func (h *fakeHost) GetTab(_ context.Context, id int) (dedup.TabRef, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.tabs {
		if t.ID == id {
			return t, nil
		}
	}
	return dedup.TabRef{}, types.NewError(types.CodeTabNotFound, "tab not found", nil)
}

func (h *fakeHost) CloseTab(_ context.Context, id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failClose[id] {
		return types.NewError(types.CodeHostFailure, "close tab failed", errors.New("boom"))
	}
	for i, t := range h.tabs {
		if t.ID == id {
			h.tabs = append(h.tabs[:i], h.tabs[i+1:]...)
			h.closed = append(h.closed, id)
			return nil
		}
	}
	return types.NewError(types.CodeTabNotFound, "tab not found", nil)
}

func (h *fakeHost) ActivateTab(_ context.Context, id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activated = append(h.activated, id)
	return nil
}

func (h *fakeHost) Closed() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.closed...)
}

type memStorage struct {
	docs   map[string][]byte
	setErr error
}

func (m *memStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := m.docs[key]
	return data, ok, nil
}

func (m *memStorage) Set(_ context.Context, key string, data []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.docs[key] = data
	return nil
}

func newStore(patch dedup.Patch) *settings.Store {
	s := settings.NewStore(&memStorage{docs: map[string][]byte{}}, dedup.DefaultSettings().Merge(patch))
	return s
}

type notification struct {
	title   string
	message string
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, title, message string) error {
	n.sent = append(n.sent, notification{title: title, message: message})
	return n.err
}

type fakeJournal struct {
	records []Closure
}

func (j *fakeJournal) Write(record any) error {
	j.records = append(j.records, record.(Closure))
	return nil
}

type fakeFeed struct {
	kinds []string
}

func (f *fakeFeed) PublishJSON(kind string, _ any) {
	f.kinds = append(f.kinds, kind)
}

func boolPtr(b bool) *bool { return &b }
