package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/relay"
	"github.com/dgnsrekt/tabdedup/internal/settings"
	"github.com/dgnsrekt/tabdedup/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSameTabs() []dedup.TabRef {
	return []dedup.TabRef{
		{ID: 1, URL: "https://a.com", Title: "A1"},
		{ID: 2, URL: "https://a.com", Title: "A2"},
		{ID: 3, URL: "https://a.com/", Title: "A3"},
	}
}

func TestCheckTabClosesOlderDuplicate(t *testing.T) {
	host := newFakeHost(
		dedup.TabRef{ID: 1, URL: "https://example.com/page#intro", Title: "old"},
		dedup.TabRef{ID: 2, URL: "https://other.com/"},
		dedup.TabRef{ID: 5, URL: "https://example.com/page", Title: "new"},
	)
	notifier := &fakeNotifier{}
	journal := &fakeJournal{}
	feed := &fakeFeed{}
	svc := NewService(host, newStore(dedup.Patch{}), WithNotifier(notifier, ""), WithJournal(journal), WithFeed(feed))

	closed := svc.CheckTab(context.Background(), dedup.TabRef{ID: 5, URL: "https://example.com/page", Title: "new"})

	require.True(t, closed)
	assert.Equal(t, []int{1}, host.Closed())
	assert.Empty(t, host.activated)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, DefaultNotifyTitle, notifier.sent[0].title)
	assert.Equal(t, "Closed duplicate tab:\nhttps://example.com/page#intro", notifier.sent[0].message)

	require.Len(t, journal.records, 1)
	rec := journal.records[0]
	assert.Equal(t, ReasonDuplicate, rec.Reason)
	assert.Equal(t, 1, rec.TabID)
	assert.Equal(t, 5, rec.KeptTabID)
	assert.Equal(t, "https://example.com/page", rec.NormalizedURL)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, []string{relay.KindDuplicateClosed}, feed.kinds)
}

func TestCheckTabShortCircuits(t *testing.T) {
	tests := []struct {
		name  string
		patch dedup.Patch
		tab   dedup.TabRef
	}{
		{name: "disabled", patch: dedup.Patch{Enabled: boolPtr(false)}, tab: dedup.TabRef{ID: 9, URL: "https://a.com/"}},
		{name: "invalid url", tab: dedup.TabRef{ID: 9, URL: "chrome://newtab/"}},
		{name: "excluded domain", patch: dedup.Patch{ExcludedDomains: &[]string{"a.com"}}, tab: dedup.TabRef{ID: 9, URL: "https://www.a.com/"}},
		{name: "no match", tab: dedup.TabRef{ID: 9, URL: "https://b.com/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost(
				dedup.TabRef{ID: 1, URL: "https://a.com/"},
				dedup.TabRef{ID: 2, URL: "https://www.a.com/"},
				dedup.TabRef{ID: 3, URL: "chrome://newtab/"},
			)
			host.tabs = append(host.tabs, tt.tab)
			svc := NewService(host, newStore(tt.patch))

			assert.False(t, svc.CheckTab(context.Background(), tt.tab))
			assert.Empty(t, host.Closed())
		})
	}
}

func TestCheckTabListFailureIsSwallowed(t *testing.T) {
	host := newFakeHost()
	host.listErr = errors.New("cdp down")
	svc := NewService(host, newStore(dedup.Patch{}))

	assert.False(t, svc.CheckTab(context.Background(), dedup.TabRef{ID: 1, URL: "https://a.com/"}))
}

func TestResolveDuplicateActivatesWhenConfigured(t *testing.T) {
	host := newFakeHost(dedup.TabRef{ID: 1, URL: "https://a.com/"}, dedup.TabRef{ID: 2, URL: "https://a.com/"})
	svc := NewService(host, newStore(dedup.Patch{ShowNotification: boolPtr(false)}), WithActivateOnResolve(true))

	svc.ResolveDuplicate(context.Background(), dedup.TabRef{ID: 2, URL: "https://a.com/"}, dedup.TabRef{ID: 1, URL: "https://a.com/"})

	assert.Equal(t, []int{1}, host.Closed())
	assert.Equal(t, []int{2}, host.activated)
}

func TestResolveDuplicateCloseFailure(t *testing.T) {
	host := newFakeHost(dedup.TabRef{ID: 1, URL: "https://a.com/"}, dedup.TabRef{ID: 2, URL: "https://a.com/"})
	host.failClose[1] = true
	notifier := &fakeNotifier{}
	journal := &fakeJournal{}
	svc := NewService(host, newStore(dedup.Patch{}), WithNotifier(notifier, "t"), WithJournal(journal), WithActivateOnResolve(true))

	svc.ResolveDuplicate(context.Background(), dedup.TabRef{ID: 2}, dedup.TabRef{ID: 1, URL: "https://a.com/"})

	assert.Empty(t, host.Closed())
	assert.Empty(t, host.activated)
	assert.Empty(t, notifier.sent)
	assert.Empty(t, journal.records)
}

func TestResolveDuplicateNotifierErrorIgnored(t *testing.T) {
	host := newFakeHost(dedup.TabRef{ID: 1, URL: "https://a.com/"}, dedup.TabRef{ID: 2, URL: "https://a.com/"})
	notifier := &fakeNotifier{err: errors.New("offline")}
	svc := NewService(host, newStore(dedup.Patch{}), WithNotifier(notifier, "Custom"))

	svc.ResolveDuplicate(context.Background(), dedup.TabRef{ID: 2}, dedup.TabRef{ID: 1, URL: "https://a.com/"})

	assert.Equal(t, []int{1}, host.Closed())
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Custom", notifier.sent[0].title)
}

func TestCloseDuplicatesKeepsNewest(t *testing.T) {
	host := newFakeHost(threeSameTabs()...)
	journal := &fakeJournal{}
	svc := NewService(host, newStore(dedup.Patch{}), WithJournal(journal))

	res, err := svc.CloseDuplicates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, res.ClosedCount)
	assert.Equal(t, []int{2, 1}, host.Closed())
	require.Len(t, journal.records, 2)
	for _, rec := range journal.records {
		assert.Equal(t, ReasonBulk, rec.Reason)
		assert.Equal(t, 3, rec.KeptTabID)
		assert.Equal(t, "https://a.com/", rec.NormalizedURL)
	}
	assert.Equal(t, "A2", journal.records[0].Title)
	assert.Equal(t, "https://a.com", journal.records[0].URL)
}

func TestCloseDuplicatesSkipsFailures(t *testing.T) {
	host := newFakeHost(threeSameTabs()...)
	host.failClose[2] = true
	svc := NewService(host, newStore(dedup.Patch{}))

	res, err := svc.CloseDuplicates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.ClosedCount)
	assert.Equal(t, []int{1}, host.Closed())
}

func TestCloseDuplicatesNothingToClose(t *testing.T) {
	host := newFakeHost(dedup.TabRef{ID: 1, URL: "https://a.com/"}, dedup.TabRef{ID: 2, URL: "https://b.com/"})
	svc := NewService(host, newStore(dedup.Patch{}))

	res, err := svc.CloseDuplicates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, res.ClosedCount)
}

func TestCloseDuplicatesListError(t *testing.T) {
	host := newFakeHost()
	host.listErr = types.NewError(types.CodeCDPUnavailable, "failed to list targets", nil)
	svc := NewService(host, newStore(dedup.Patch{}))

	_, err := svc.CloseDuplicates(context.Background())
	assert.True(t, types.HasCode(err, types.CodeCDPUnavailable))
}

func TestGetStatsIgnoresExclusions(t *testing.T) {
	host := newFakeHost(
		dedup.TabRef{ID: 1, URL: "https://a.com/"},
		dedup.TabRef{ID: 2, URL: "https://a.com/"},
		dedup.TabRef{ID: 3, URL: "about:blank"},
		dedup.TabRef{ID: 4, URL: "about:blank"},
	)
	svc := NewService(host, newStore(dedup.Patch{ExcludedDomains: &[]string{"a.com"}}))

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dedup.Stats{TotalTabs: 4, DuplicateTabs: 1}, stats)

	groups, err := svc.ScanDuplicates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestUpdateSettingsSwallowsStorageError(t *testing.T) {
	store := settings.NewStore(&memStorage{docs: map[string][]byte{}, setErr: errors.New("disk full")}, dedup.DefaultSettings())
	feed := &fakeFeed{}
	svc := NewService(newFakeHost(), store, WithFeed(feed))

	ack := svc.UpdateSettings(context.Background(), dedup.Patch{IgnoreSearch: boolPtr(true)})

	assert.True(t, ack.Success)
	assert.True(t, svc.GetSettings(context.Background()).IgnoreSearch)
	assert.Equal(t, []string{relay.KindSettingsUpdated}, feed.kinds)
}
