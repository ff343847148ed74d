package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/relay"
)

// Tabs is the host capability for enumerating and mutating tabs.
type Tabs interface {
	ListTabs(ctx context.Context) ([]dedup.TabRef, error)
	GetTab(ctx context.Context, id int) (dedup.TabRef, error)
	CloseTab(ctx context.Context, id int) error
	ActivateTab(ctx context.Context, id int) error
}

// Notifier shows a best-effort user notification.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// SettingsStore owns the active Settings snapshot.
type SettingsStore interface {
	Current() dedup.Settings
	Update(ctx context.Context, patch dedup.Patch) (dedup.Settings, error)
}

// RecordWriter receives closure records. Writes must not block.
type RecordWriter interface {
	Write(record any) error
}

// FeedPublisher publishes engine events to live subscribers.
type FeedPublisher interface {
	PublishJSON(kind string, v any)
}

const DefaultNotifyTitle = "Tab Deduplicator"

// Service is the deduplication engine bound to a host.
type Service struct {
	tabs     Tabs
	settings SettingsStore

	notifier          Notifier
	notifyTitle       string
	journal           RecordWriter
	feed              FeedPublisher
	activateOnResolve bool
	now               func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier, title string) Option {
	return func(s *Service) {
		s.notifier = n
		if title != "" {
			s.notifyTitle = title
		}
	}
}

func WithJournal(w RecordWriter) Option {
	return func(s *Service) { s.journal = w }
}

func WithFeed(f FeedPublisher) Option {
	return func(s *Service) { s.feed = f }
}

// WithActivateOnResolve focuses the surviving tab after a duplicate is
// closed.
func WithActivateOnResolve(enabled bool) Option {
	return func(s *Service) { s.activateOnResolve = enabled }
}

func NewService(tabs Tabs, settings SettingsStore, opts ...Option) *Service {
	s := &Service{
		tabs:        tabs,
		settings:    settings,
		notifyTitle: DefaultNotifyTitle,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetSettings(context.Context) dedup.Settings {
	return s.settings.Current()
}

// UpdateSettings merges patch into the active settings. A storage failure is
// logged and the in-memory value stays in effect.
func (s *Service) UpdateSettings(ctx context.Context, patch dedup.Patch) Ack {
	next, err := s.settings.Update(ctx, patch)
	if err != nil {
		slog.Error("settings save failed", "error", err)
	}
	slog.Info("settings updated",
		"enabled", next.Enabled,
		"ignore_hash", next.IgnoreHash,
		"ignore_search", next.IgnoreSearch,
		"show_notification", next.ShowNotification,
		"excluded_domains", len(next.ExcludedDomains),
	)
	s.publish(relay.KindSettingsUpdated, next)
	return Ack{Success: true}
}

// ListTabs returns the live tab set in host order.
func (s *Service) ListTabs(ctx context.Context) ([]dedup.TabRef, error) {
	return s.tabs.ListTabs(ctx)
}

func (s *Service) GetStats(ctx context.Context) (dedup.Stats, error) {
	tabs, err := s.tabs.ListTabs(ctx)
	if err != nil {
		return dedup.Stats{}, err
	}
	return dedup.ComputeStats(tabs, s.settings.Current()), nil
}

func (s *Service) ScanDuplicates(ctx context.Context) ([]dedup.DuplicateGroup, error) {
	tabs, err := s.tabs.ListTabs(ctx)
	if err != nil {
		return nil, err
	}
	return dedup.ScanAllDuplicates(tabs, s.settings.Current()), nil
}

func (s *Service) publish(kind string, v any) {
	if s.feed != nil {
		s.feed.PublishJSON(kind, v)
	}
}
