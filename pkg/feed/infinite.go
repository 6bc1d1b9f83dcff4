package feed

import (
	"context"
	"errors"
	"sync"
)

// InfiniteLoader accumulates pages for infinite-scroll mode. The visibility
// sentinel lives with the caller; the loader only exposes LoadMore and
// guards against overlapping loads so a sentinel firing repeatedly cannot
// duplicate pages.
type InfiniteLoader struct {
	orch *Orchestrator

	mu      sync.Mutex
	items   []Notification
	page    int
	hasMore bool
	loading bool
	err     error
}

func NewInfiniteLoader(orch *Orchestrator) *InfiniteLoader {
	return &InfiniteLoader{orch: orch, hasMore: true}
}

// Refresh discards the accumulation and reloads from offset 0.
func (l *InfiniteLoader) Refresh(ctx context.Context, filters Filters) error {
	l.mu.Lock()
	l.items = nil
	l.page = 0
	l.hasMore = true
	l.err = nil
	l.mu.Unlock()
	return l.LoadMore(ctx, filters)
}

// LoadMore fetches the next page and appends it. It is a no-op when a load
// is already running or the server reported no more data.
func (l *InfiniteLoader) LoadMore(ctx context.Context, filters Filters) error {
	l.mu.Lock()
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	next := l.page + 1
	l.mu.Unlock()

	page, err := l.orch.Fetch(ctx, filters, next)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err != nil {
		l.err = err
		return err
	}
	l.err = nil
	l.page = next
	l.items = append(l.items, page.Items...)
	l.hasMore = page.Pagination.HasMore
	return nil
}

// Items returns a copy of the accumulated notifications.
func (l *InfiniteLoader) Items() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notification(nil), l.items...)
}

func (l *InfiniteLoader) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

func (l *InfiniteLoader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *InfiniteLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// patch applies fn to every accumulated item in place.
func (l *InfiniteLoader) patch(fn func(*Notification)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		fn(&l.items[i])
	}
}

// remove drops the items whose ids are in the set.
func (l *InfiniteLoader) remove(ids map[string]bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.items[:0]
	for _, n := range l.items {
		if !ids[n.ID] {
			out = append(out, n)
		}
	}
	l.items = out
}
