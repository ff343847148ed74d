package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

const DefaultSettleDelay = 500 * time.Millisecond

// Checker deduplicates a single tab against the live tab set.
type Checker interface {
	CheckTab(ctx context.Context, tab dedup.TabRef) bool
}

// TabGetter re-reads a tab from the host.
type TabGetter interface {
	GetTab(ctx context.Context, id int) (dedup.TabRef, error)
}

// Watcher turns host tab lifecycle events into duplicate checks.
type Watcher struct {
	checker Checker
	tabs    TabGetter
	settle  time.Duration

	wg sync.WaitGroup
}

func New(checker Checker, tabs TabGetter, settle time.Duration) *Watcher {
	if settle < 0 {
		settle = 0
	}
	return &Watcher{checker: checker, tabs: tabs, settle: settle}
}

// Run handles events until ctx is done or events is closed, then waits for
// in-flight checks.
func (w *Watcher) Run(ctx context.Context, events <-chan types.TabEvent) {
	slog.Info("watcher started", "settle", w.settle)
	defer slog.Info("watcher stopped")
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.dispatch(ctx, ev)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, ev types.TabEvent) {
	switch ev.Kind {
	case types.TabCreated:
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.handleCreated(ctx, ev.Tab.ID)
		}()
	case types.TabUpdated:
		if !ev.URLChanged || ev.Status != types.StatusComplete {
			return
		}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.checker.CheckTab(ctx, ev.Tab)
		}()
	case types.TabRemoved:
		slog.Debug("tab removed", "tab_id", ev.Tab.ID)
	}
}

// handleCreated waits for a new tab to settle on its URL before checking it.
func (w *Watcher) handleCreated(ctx context.Context, id int) {
	if w.settle > 0 {
		timer := time.NewTimer(w.settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	tab, err := w.tabs.GetTab(ctx, id)
	if err != nil {
		slog.Debug("created tab gone before check", "tab_id", id, "error", err)
		return
	}
	if !dedup.IsValidURL(tab.URL) {
		return
	}
	w.checker.CheckTab(ctx, tab)
}
