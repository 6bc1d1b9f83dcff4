package feed

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Fetch when a newer fetch cancelled this one.
// Callers must treat it as a no-op, never as a user-visible error.
var ErrSuperseded = errors.New("feed: fetch superseded")

// ListParams is the plain list query.
type ListParams struct {
	UserID string
	Limit  int
	Offset int
}

// FilteredParams is the filtered list query; non-default filter fields travel
// serialized (dates as RFC 3339).
type FilteredParams struct {
	UserID  string
	Limit   int
	Offset  int
	Filters Filters
}

// RecentParams is the lightweight "fast mode" query. It ignores pagination
// and returns a fixed recent window.
type RecentParams struct {
	UserID string
	Limit  int
}

// Client is the remote transport collaborator. Every call must honor ctx
// cancellation.
type Client interface {
	List(ctx context.Context, p ListParams) (Page, error)
	ListFiltered(ctx context.Context, p FilteredParams) (Page, error)
	Recent(ctx context.Context, p RecentParams) (Page, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
	Delete(ctx context.Context, userID string, ids ...string) error
}

// Orchestrator translates (filters, page) into exactly one in-flight request,
// cancelling any prior one. Only the most recently issued fetch is
// authoritative: a superseded fetch can never commit its result.
type Orchestrator struct {
	client Client
	userID string

	mu       sync.Mutex
	pageSize int
	fastMode bool
	cancel   context.CancelFunc
	gen      uint64
}

func NewOrchestrator(client Client, userID string, pageSize int) *Orchestrator {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Orchestrator{client: client, userID: userID, pageSize: pageSize}
}

// SetFastMode toggles the cheap recent-window query. It only takes effect
// when no filter is active.
func (o *Orchestrator) SetFastMode(enabled bool) {
	o.mu.Lock()
	o.fastMode = enabled
	o.mu.Unlock()
}

func (o *Orchestrator) FastMode() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fastMode
}

func (o *Orchestrator) PageSize() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pageSize
}

// SetPageSize changes the page size for subsequent fetches.
func (o *Orchestrator) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	o.mu.Lock()
	o.pageSize = size
	o.mu.Unlock()
}

// Fetch issues the query selected by the current filters and fast-mode flag,
// aborting any previous in-flight fetch. Page is 1-based. The returned Page
// is normalized: recent mode fixes pagination to a single page, list modes
// compute TotalPages from TotalCount.
func (o *Orchestrator) Fetch(ctx context.Context, filters Filters, page int) (Page, error) {
	if page < 1 {
		page = 1
	}

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.gen++
	gen := o.gen
	fast := o.fastMode
	limit := o.pageSize
	o.mu.Unlock()

	var (
		result Page
		err    error
	)
	offset := (page - 1) * limit

	switch {
	case fast && filters.IsDefault():
		result, err = o.client.Recent(fctx, RecentParams{UserID: o.userID, Limit: limit})
		if err == nil {
			result.Pagination = Pagination{
				CurrentPage: 1,
				TotalPages:  1,
				TotalCount:  len(result.Items),
				HasMore:     false,
				PageSize:    limit,
			}
		}
	case !filters.IsDefault():
		result, err = o.client.ListFiltered(fctx, FilteredParams{
			UserID:  o.userID,
			Limit:   limit,
			Offset:  offset,
			Filters: filters.Clone(),
		})
		if err == nil {
			normalize(&result, page, limit)
		}
	default:
		result, err = o.client.List(fctx, ListParams{UserID: o.userID, Limit: limit, Offset: offset})
		if err == nil {
			normalize(&result, page, limit)
		}
	}

	o.mu.Lock()
	stale := gen != o.gen
	if !stale {
		o.cancel = nil
	}
	o.mu.Unlock()

	// A fetch that was aborted, or whose response arrived after a newer fetch
	// started, must never overwrite state.
	if stale || errors.Is(err, context.Canceled) {
		return Page{}, ErrSuperseded
	}
	if err != nil {
		return Page{}, err
	}
	return result, nil
}

func normalize(p *Page, page, limit int) {
	p.Pagination.CurrentPage = page
	p.Pagination.PageSize = limit
	totalPages := (p.Pagination.TotalCount + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	p.Pagination.TotalPages = totalPages
}

// Cancel aborts any in-flight fetch.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.gen++
	o.mu.Unlock()
}

// Client exposes the transport for the mutation layer.
func (o *Orchestrator) Client() Client { return o.client }

// UserID returns the feed owner's id.
func (o *Orchestrator) UserID() string { return o.userID }
