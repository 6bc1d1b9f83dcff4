// Package feed implements the client-side notification feed controller: a
// filter state store, a query-string synchronizer, a fetch orchestrator with
// cancellation, a dual-mode (paged/infinite) list controller and an optimistic
// mutation layer. It is the SDK counterpart of the server's notification
// module and shares its wire contract.
package feed

import (
	"strings"
	"time"
)

// Status filters notifications by read state.
type Status string

const (
	StatusAll    Status = "all"
	StatusRead   Status = "read"
	StatusUnread Status = "unread"
)

// Sort selects the ordering of the notification list.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortType   Sort = "type"
)

// DateRange bounds notifications by creation date, inclusive on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Filters is the canonical filter criteria for the notification feed.
type Filters struct {
	Search    string
	Types     []string
	Status    Status
	DateRange *DateRange
	SortBy    Sort
}

// DefaultFilters returns the documented default criteria: empty search, all
// types, any read state, no date bound, newest first.
func DefaultFilters() Filters {
	return Filters{Status: StatusAll, SortBy: SortNewest}
}

// IsDefault reports whether no field differs from DefaultFilters.
func (f Filters) IsDefault() bool {
	return f.ActiveCount() == 0
}

// ActiveCount returns the number of non-default fields. Types counts as a
// single field no matter how many type tags are selected.
func (f Filters) ActiveCount() int {
	count := 0
	if f.Search != "" {
		count++
	}
	if len(f.Types) > 0 {
		count++
	}
	if f.Status != "" && f.Status != StatusAll {
		count++
	}
	if f.DateRange != nil {
		count++
	}
	if f.SortBy != "" && f.SortBy != SortNewest {
		count++
	}
	return count
}

// Normalize deduplicates Types preserving order and swaps a reversed date
// range so that From <= To always holds. The type vocabulary is open, but a
// tag may not contain a comma: that is the list separator in the query
// string, so such a tag could never round trip. Offending tags are dropped.
func (f *Filters) Normalize() {
	if len(f.Types) > 0 {
		seen := make(map[string]bool, len(f.Types))
		out := f.Types[:0]
		for _, t := range f.Types {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] || strings.Contains(t, ",") {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
		f.Types = out
	}
	if f.Status == "" {
		f.Status = StatusAll
	}
	if f.SortBy == "" {
		f.SortBy = SortNewest
	}
	if f.DateRange != nil && f.DateRange.To.Before(f.DateRange.From) {
		f.DateRange.From, f.DateRange.To = f.DateRange.To, f.DateRange.From
	}
}

// Clone returns a deep copy, so callers can hold a snapshot without racing
// the store.
func (f Filters) Clone() Filters {
	out := f
	if f.Types != nil {
		out.Types = append([]string(nil), f.Types...)
	}
	if f.DateRange != nil {
		r := *f.DateRange
		out.DateRange = &r
	}
	return out
}

// Equal compares all fields.
func (f Filters) Equal(o Filters) bool {
	return f.Status == o.Status && f.EqualIgnoringStatus(o)
}

// EqualIgnoringStatus compares all fields except Status. The URL synchronizer
// uses it to decide whether an externally-navigated URL is a significant
// change: quick status toggles intentionally lag the URL, so Status is
// excluded from the check.
func (f Filters) EqualIgnoringStatus(o Filters) bool {
	if f.Search != o.Search || f.SortBy != o.SortBy {
		return false
	}
	if len(f.Types) != len(o.Types) {
		return false
	}
	for i := range f.Types {
		if f.Types[i] != o.Types[i] {
			return false
		}
	}
	if (f.DateRange == nil) != (o.DateRange == nil) {
		return false
	}
	if f.DateRange != nil {
		if !f.DateRange.From.Equal(o.DateRange.From) || !f.DateRange.To.Equal(o.DateRange.To) {
			return false
		}
	}
	return true
}

// onlyStatusDiffers reports whether the two criteria differ in Status alone.
// Such a transition is a "quick filter" and gets the shorter refetch debounce.
func onlyStatusDiffers(a, b Filters) bool {
	return a.Status != b.Status && a.EqualIgnoringStatus(b)
}
