package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/relay"
	"github.com/google/uuid"
)

const (
	ReasonDuplicate = "duplicate"
	ReasonBulk      = "bulk"
)

// Closure records a tab closed by the engine.
type Closure struct {
	ID            string    `json:"id"`
	At            time.Time `json:"at"`
	Reason        string    `json:"reason"`
	TabID         int       `json:"tabId"`
	URL           string    `json:"url,omitempty"`
	Title         string    `json:"title,omitempty"`
	KeptTabID     int       `json:"keptTabId"`
	NormalizedURL string    `json:"normalizedUrl,omitempty"`
}

// CheckTab looks for an existing tab with the same normalized URL as tab and
// resolves the pair when one is found. It reports whether a duplicate was
// closed.
func (s *Service) CheckTab(ctx context.Context, tab dedup.TabRef) bool {
	settings := s.settings.Current()
	if !settings.Enabled || !dedup.IsValidURL(tab.URL) || dedup.IsDomainExcluded(tab.URL, settings) {
		return false
	}

	all, err := s.tabs.ListTabs(ctx)
	if err != nil {
		slog.Warn("check tab list failed", "tab_id", tab.ID, "error", err)
		return false
	}
	dup, found := dedup.FindDuplicate(tab, all, settings)
	if !found {
		return false
	}
	return s.resolve(ctx, tab, dup, settings)
}

// ResolveDuplicate closes oldTab in favour of newTab. Failures are logged
// and not retried.
func (s *Service) ResolveDuplicate(ctx context.Context, newTab, oldTab dedup.TabRef) {
	s.resolve(ctx, newTab, oldTab, s.settings.Current())
}

func (s *Service) resolve(ctx context.Context, newTab, oldTab dedup.TabRef, settings dedup.Settings) bool {
	if err := s.tabs.CloseTab(ctx, oldTab.ID); err != nil {
		slog.Warn("close duplicate tab failed", "tab_id", oldTab.ID, "kept_tab_id", newTab.ID, "error", err)
		return false
	}
	slog.Info("closed duplicate tab", "tab_id", oldTab.ID, "kept_tab_id", newTab.ID, "url", oldTab.URL)
	s.record(Closure{
		Reason:        ReasonDuplicate,
		TabID:         oldTab.ID,
		URL:           oldTab.URL,
		Title:         oldTab.Title,
		KeptTabID:     newTab.ID,
		NormalizedURL: dedup.Normalize(oldTab.URL, settings),
	})

	if s.activateOnResolve {
		if err := s.tabs.ActivateTab(ctx, newTab.ID); err != nil {
			slog.Warn("activate kept tab failed", "tab_id", newTab.ID, "error", err)
		}
	}

	if settings.ShowNotification && s.notifier != nil {
		if err := s.notifier.Notify(ctx, s.notifyTitle, dedup.NotificationMessage(oldTab.URL)); err != nil {
			slog.Debug("notification failed", "error", err)
		}
	}
	return true
}

// CloseDuplicates closes every duplicate, keeping the newest tab of each
// group. Individual close failures are logged and skipped.
func (s *Service) CloseDuplicates(ctx context.Context) (dedup.CloseResult, error) {
	settings := s.settings.Current()
	tabs, err := s.tabs.ListTabs(ctx)
	if err != nil {
		return dedup.CloseResult{}, err
	}

	byID := make(map[int]dedup.TabRef, len(tabs))
	for _, t := range tabs {
		byID[t.ID] = t
	}

	var result dedup.CloseResult
	for _, d := range dedup.PlanCloseAll(dedup.ScanAllDuplicates(tabs, settings)) {
		for _, victim := range d.Close {
			if err := s.tabs.CloseTab(ctx, victim.ID); err != nil {
				slog.Warn("bulk close tab failed", "tab_id", victim.ID, "error", err)
				continue
			}
			result.ClosedCount++
			s.record(Closure{
				Reason:        ReasonBulk,
				TabID:         victim.ID,
				URL:           byID[victim.ID].URL,
				Title:         victim.Title,
				KeptTabID:     d.Keep.ID,
				NormalizedURL: d.URL,
			})
		}
	}
	slog.Info("bulk close done", "closed", result.ClosedCount, "tabs", len(tabs))
	return result, nil
}

func (s *Service) record(c Closure) {
	c.ID = uuid.NewString()
	c.At = s.now().UTC()
	if s.journal != nil {
		if err := s.journal.Write(c); err != nil {
			slog.Debug("journal write failed", "tab_id", c.TabID, "error", err)
		}
	}
	s.publish(relay.KindDuplicateClosed, c)
}
