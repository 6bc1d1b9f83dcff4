package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase is the explicit state of the list machine. The tagged union replaces
// the source's loose booleans so impossible combinations cannot be
// represented.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseLoading     Phase = "loading"
	PhaseLoadingMore Phase = "loading_more"
	PhaseLoaded      Phase = "loaded"
	PhaseErrored     Phase = "errored"
)

// Mode selects the pagination strategy.
type Mode string

const (
	ModePaged    Mode = "paged"
	ModeInfinite Mode = "infinite"
)

const (
	defaultRefetchDelay = 150 * time.Millisecond
	quickRefetchDelay   = 50 * time.Millisecond
)

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides the filter-driven refetch windows.
func WithDebounce(normal, quick time.Duration) Option {
	return func(c *Controller) {
		c.normalDelay = normal
		c.quickDelay = quick
	}
}

// WithLogger overrides the default logrus logger.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Controller) { c.log = log.WithField("component", "feed") }
}

// Controller presents one unified list view whether the underlying strategy
// is page-based or infinite-scroll. Filters persist across mode switches.
// The UI stays interactive while loading: previously fetched items remain
// visible until replaced (stale-while-revalidate).
type Controller struct {
	store *Store
	orch  *Orchestrator
	inf   *InfiniteLoader
	log   *logrus.Entry
	deb   *debouncer

	normalDelay time.Duration
	quickDelay  time.Duration
	baseCtx     context.Context

	mu              sync.Mutex
	mode            Mode
	phase           Phase
	items           []Notification
	pagination      Pagination
	page            int
	err             error
	selection       map[string]bool
	lastMutationErr error
	quickPending    bool

	unsubscribe func()
}

// NewController wires the controller to the store and orchestrator and begins
// reacting to filter changes. ctx bounds the debounced background refetches.
func NewController(ctx context.Context, store *Store, orch *Orchestrator, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		orch:        orch,
		inf:         NewInfiniteLoader(orch),
		log:         logrus.StandardLogger().WithField("component", "feed"),
		deb:         newDebouncer(),
		normalDelay: defaultRefetchDelay,
		quickDelay:  quickRefetchDelay,
		baseCtx:     ctx,
		mode:        ModePaged,
		phase:       PhaseIdle,
		page:        1,
		selection:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = store.Subscribe(c.onFilterChange)
	return c
}

// Close detaches the controller and aborts any in-flight fetch.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.deb.Cancel()
	c.orch.Cancel()
}

// onFilterChange schedules a refetch from page 1. Status-only toggles are
// quick filters: they get the shorter window plus the distinct loading
// affordance on the store.
func (c *Controller) onFilterChange(ch Change) {
	delay := c.normalDelay
	quick := onlyStatusDiffers(ch.Previous, ch.Filters)
	if quick {
		delay = c.quickDelay
		c.store.SetQuickFilterLoading(true)
	}

	// The pending bit lives on the controller, not the armed closure: a
	// normal edit arriving inside the quick window replaces the pending
	// callback, and whichever callback finally fires must still clear the
	// loading affordance.
	c.mu.Lock()
	c.page = 1
	if quick {
		c.quickPending = true
	}
	c.mu.Unlock()

	c.deb.Arm(delay, func() {
		if err := c.Refresh(c.baseCtx); err != nil {
			c.log.WithError(err).Warn("filter refetch failed")
		}
		c.mu.Lock()
		pending := c.quickPending
		c.quickPending = false
		c.mu.Unlock()
		if pending {
			c.store.SetQuickFilterLoading(false)
		}
	})
}

// Refresh reloads the active mode with the current filters.
func (c *Controller) Refresh(ctx context.Context) error {
	if c.Mode() == ModeInfinite {
		return c.infiniteRefresh(ctx)
	}
	c.mu.Lock()
	page := c.page
	c.mu.Unlock()
	return c.fetchPage(ctx, page)
}

// SetPage navigates paged mode to the given 1-based page.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	if c.Mode() != ModePaged {
		return nil
	}
	return c.fetchPage(ctx, page)
}

// SetPageSize changes the page size and reloads from page 1.
func (c *Controller) SetPageSize(ctx context.Context, size int) error {
	c.orch.SetPageSize(size)
	return c.SetPage(ctx, 1)
}

// SetInfinite toggles infinite-scroll mode. Switching in triggers a full
// refresh discarding paged state; switching out re-issues a page-1 fetch with
// the current filters, so no reconciliation between the two accumulation
// shapes is ever needed.
func (c *Controller) SetInfinite(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	current := c.mode
	if enabled {
		c.mode = ModeInfinite
	} else {
		c.mode = ModePaged
		c.page = 1
	}
	c.mu.Unlock()

	if enabled {
		if current == ModeInfinite {
			return nil
		}
		return c.infiniteRefresh(ctx)
	}
	if current == ModePaged {
		return nil
	}
	return c.fetchPage(ctx, 1)
}

// LoadMore extends the infinite accumulation by one page. Callers invoke it
// from their scroll sentinel.
func (c *Controller) LoadMore(ctx context.Context) error {
	if c.Mode() != ModeInfinite {
		return nil
	}
	c.setPhase(PhaseLoadingMore)
	err := c.inf.LoadMore(ctx, c.store.Filters())
	if err != nil {
		c.setErrored(err)
		return err
	}
	c.setPhase(PhaseLoaded)
	return nil
}

// Items returns the unified view of the active mode's collection.
func (c *Controller) Items() []Notification {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	if mode == ModeInfinite {
		return c.inf.Items()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

// HasMore reports whether more data exists in the active mode.
func (c *Controller) HasMore() bool {
	if c.Mode() == ModeInfinite {
		return c.inf.HasMore()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination.HasMore
}

func (c *Controller) fetchPage(ctx context.Context, page int) error {
	c.setPhase(PhaseLoading)

	result, err := c.orch.Fetch(ctx, c.store.Filters(), page)
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err != nil {
		// Prior data remains visible; only the phase and error change.
		c.setErrored(err)
		return err
	}

	c.mu.Lock()
	c.items = result.Items
	c.pagination = result.Pagination
	c.page = result.Pagination.CurrentPage
	c.phase = PhaseLoaded
	c.err = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) infiniteRefresh(ctx context.Context) error {
	c.setPhase(PhaseLoading)
	if err := c.inf.Refresh(ctx, c.store.Filters()); err != nil {
		c.setErrored(err)
		return err
	}
	c.setPhase(PhaseLoaded)
	return nil
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	if p != PhaseErrored {
		c.err = nil
	}
	c.mu.Unlock()
}

func (c *Controller) setErrored(err error) {
	c.mu.Lock()
	c.phase = PhaseErrored
	c.err = err
	c.mu.Unlock()
}
