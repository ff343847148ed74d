package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

// Key is the storage key holding the persisted settings document.
const Key = "settings"

// Storage persists JSON documents by key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Store owns the process-wide Settings value. Readers get an immutable
// snapshot; Update replaces the snapshot wholesale and persists it.
type Store struct {
	storage  Storage
	defaults dedup.Settings

	writeMu sync.Mutex
	current atomic.Pointer[dedup.Settings]
}

// NewStore returns a Store holding defaults until Load is called.
func NewStore(storage Storage, defaults dedup.Settings) *Store {
	s := &Store{storage: storage, defaults: defaults.Clone()}
	initial := defaults.Clone()
	s.current.Store(&initial)
	return s
}

// Load reads persisted settings and merges them over the defaults. On
// failure the defaults stay in effect and the error is returned for logging.
func (s *Store) Load(ctx context.Context) error {
	data, found, err := s.storage.Get(ctx, Key)
	if err != nil {
		return types.NewError(types.CodeStorageFailure, "load settings", err)
	}
	if !found {
		slog.Info("no persisted settings, using defaults")
		return nil
	}

	var patch dedup.Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return types.NewError(types.CodeStorageFailure, "decode settings", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	merged := s.defaults.Merge(patch)
	s.current.Store(&merged)
	slog.Info("settings loaded",
		"enabled", merged.Enabled,
		"ignore_hash", merged.IgnoreHash,
		"ignore_search", merged.IgnoreSearch,
		"show_notification", merged.ShowNotification,
		"excluded_domains", len(merged.ExcludedDomains),
	)
	return nil
}

// Current returns a copy of the active settings.
func (s *Store) Current() dedup.Settings {
	return s.current.Load().Clone()
}

// Update merges patch into the active settings, swaps in the result, and
// writes it to storage. The in-memory value is replaced even when the write
// fails; the returned settings are always the new active value.
func (s *Store) Update(ctx context.Context, patch dedup.Patch) (dedup.Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Merge(patch)
	s.current.Store(&next)

	data, err := json.Marshal(next)
	if err != nil {
		return next.Clone(), fmt.Errorf("encode settings: %w", err)
	}
	if err := s.storage.Set(ctx, Key, data); err != nil {
		return next.Clone(), types.NewError(types.CodeStorageFailure, "save settings", err)
	}
	return next.Clone(), nil
}
