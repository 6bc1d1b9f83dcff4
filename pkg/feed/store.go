package feed

import "sync"

// Origin tags a filter transition with where it came from. The explicit tag
// replaces a boolean re-entrancy flag: the URL synchronizer writes the URL
// only for user edits and applies externally-navigated URLs back to the store
// without bouncing them out again.
type Origin string

const (
	OriginUserEdit    Origin = "user-edit"
	OriginExternalNav Origin = "external-navigation"
)

// Change is delivered to store subscribers after every filter transition.
type Change struct {
	Filters  Filters
	Previous Filters
	Origin   Origin
}

// Store is the single mutable source of truth for the feed's filter
// criteria. It performs no I/O; consumers subscribe for change
// notifications. Filters returns a deep snapshot, so it is safe to call from
// debounced or async callbacks without holding any reactive binding.
type Store struct {
	mu           sync.Mutex
	filters      Filters
	quickLoading bool
	nextSubID    int
	subs         map[int]func(Change)
}

func NewStore() *Store {
	return &Store{
		filters: DefaultFilters(),
		subs:    make(map[int]func(Change)),
	}
}

// Subscribe registers fn for filter changes and returns an unsubscribe
// function. Callbacks run synchronously on the mutating goroutine, outside
// the store lock.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Filters returns a snapshot of the current criteria.
func (s *Store) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// Apply replaces the whole criteria, tagged with its origin.
func (s *Store) Apply(f Filters, origin Origin) {
	s.mutate(origin, func(cur *Filters) { *cur = f.Clone() })
}

// SetFilters replaces the whole criteria as a user edit.
func (s *Store) SetFilters(f Filters) { s.Apply(f, OriginUserEdit) }

func (s *Store) SetSearch(search string) {
	s.mutate(OriginUserEdit, func(f *Filters) { f.Search = search })
}

func (s *Store) SetStatus(status Status) {
	s.mutate(OriginUserEdit, func(f *Filters) { f.Status = status })
}

func (s *Store) SetSortBy(sortBy Sort) {
	s.mutate(OriginUserEdit, func(f *Filters) { f.SortBy = sortBy })
}

func (s *Store) SetTypes(types []string) {
	s.mutate(OriginUserEdit, func(f *Filters) { f.Types = append([]string(nil), types...) })
}

func (s *Store) SetDateRange(r *DateRange) {
	s.mutate(OriginUserEdit, func(f *Filters) {
		if r == nil {
			f.DateRange = nil
			return
		}
		cp := *r
		f.DateRange = &cp
	})
}

// Reset restores the default criteria.
func (s *Store) Reset() {
	s.mutate(OriginUserEdit, func(f *Filters) { *f = DefaultFilters() })
}

// HasActiveFilters reports whether any field differs from the default.
func (s *Store) HasActiveFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.filters.IsDefault()
}

// ActiveFilterCount returns the number of non-default fields, counting Types
// as one field regardless of how many tags are selected.
func (s *Store) ActiveFilterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.ActiveCount()
}

// SetQuickFilterLoading flags the transient loading affordance shown during
// low-latency status toggles, distinct from full-page loading. It does not
// notify subscribers.
func (s *Store) SetQuickFilterLoading(loading bool) {
	s.mu.Lock()
	s.quickLoading = loading
	s.mu.Unlock()
}

func (s *Store) QuickFilterLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quickLoading
}

func (s *Store) mutate(origin Origin, fn func(*Filters)) {
	s.mu.Lock()
	prev := s.filters.Clone()
	fn(&s.filters)
	s.filters.Normalize()
	next := s.filters.Clone()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if prev.Equal(next) {
		return
	}
	ch := Change{Filters: next, Previous: prev, Origin: origin}
	for _, fn := range subs {
		fn(ch)
	}
}
