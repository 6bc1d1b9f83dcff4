package feed_test

import (
	"testing"
	"time"

	"github.com/notifeed/notifeed/pkg/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ActiveFilterCount(t *testing.T) {
	s := feed.NewStore()
	assert.Equal(t, 0, s.ActiveFilterCount())
	assert.False(t, s.HasActiveFilters())

	s.SetSearch("billing")
	assert.Equal(t, 1, s.ActiveFilterCount())

	// Types counts as one field no matter how many tags.
	s.SetTypes([]string{"report", "security", "urgent"})
	assert.Equal(t, 2, s.ActiveFilterCount())

	s.SetStatus(feed.StatusUnread)
	assert.Equal(t, 3, s.ActiveFilterCount())

	s.SetDateRange(&feed.DateRange{From: time.Now().Add(-time.Hour), To: time.Now()})
	assert.Equal(t, 4, s.ActiveFilterCount())

	s.SetSortBy(feed.SortOldest)
	assert.Equal(t, 5, s.ActiveFilterCount())
	assert.True(t, s.HasActiveFilters())

	s.Reset()
	assert.Equal(t, 0, s.ActiveFilterCount())
}

func TestStore_SubscribeDeliversOriginAndPrevious(t *testing.T) {
	s := feed.NewStore()

	var changes []feed.Change
	unsubscribe := s.Subscribe(func(ch feed.Change) { changes = append(changes, ch) })

	s.SetSearch("alpha")
	require.Len(t, changes, 1)
	assert.Equal(t, feed.OriginUserEdit, changes[0].Origin)
	assert.Equal(t, "", changes[0].Previous.Search)
	assert.Equal(t, "alpha", changes[0].Filters.Search)

	ext := feed.DefaultFilters()
	ext.Status = feed.StatusRead
	s.Apply(ext, feed.OriginExternalNav)
	require.Len(t, changes, 2)
	assert.Equal(t, feed.OriginExternalNav, changes[1].Origin)

	unsubscribe()
	s.SetSearch("beta")
	assert.Len(t, changes, 2)
}

func TestStore_NoNotificationWhenNothingChanged(t *testing.T) {
	s := feed.NewStore()
	s.SetSearch("same")

	count := 0
	defer s.Subscribe(func(feed.Change) { count++ })()

	s.SetSearch("same")
	assert.Zero(t, count)
}

func TestStore_NormalizesTypesAndRange(t *testing.T) {
	s := feed.NewStore()
	s.SetTypes([]string{"info", "info", "", "urgent"})
	assert.Equal(t, []string{"info", "urgent"}, s.Filters().Types)

	now := time.Now()
	s.SetDateRange(&feed.DateRange{From: now, To: now.Add(-time.Hour)})
	r := s.Filters().DateRange
	require.NotNil(t, r)
	assert.True(t, r.From.Before(r.To))
}

func TestStore_QuickFilterLoadingFlag(t *testing.T) {
	s := feed.NewStore()
	assert.False(t, s.QuickFilterLoading())
	s.SetQuickFilterLoading(true)
	assert.True(t, s.QuickFilterLoading())
	s.SetQuickFilterLoading(false)
	assert.False(t, s.QuickFilterLoading())
}

func TestStore_FiltersReturnsSnapshot(t *testing.T) {
	s := feed.NewStore()
	s.SetTypes([]string{"report"})

	snap := s.Filters()
	snap.Types[0] = "mutated"
	assert.Equal(t, []string{"report"}, s.Filters().Types)
}
