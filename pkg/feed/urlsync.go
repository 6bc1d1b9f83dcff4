package feed

import (
	"net/url"
	"sync"
	"time"
)

// Navigator is the address-bar collaborator: it exposes the current query
// string and accepts replacements. Browsers, TUIs and tests implement it.
type Navigator interface {
	// Replace swaps the current query string without adding a history entry.
	Replace(query string)
	// Query returns the current query parameters.
	Query() url.Values
}

// Synchronizer keeps a Navigator's query string consistent with a Store and
// hydrates the store from the URL on startup or external navigation
// (back/forward). Writes are debounced to coalesce rapid edits, and a
// self-write guard keeps a write-triggered navigation callback from being
// reinterpreted as an external change.
type Synchronizer struct {
	store      *Store
	nav        Navigator
	deb        *debouncer
	delay      time.Duration
	echoWindow time.Duration

	mu          sync.Mutex
	lastWritten string
	writtenAt   time.Time

	unsubscribe func()
}

const (
	defaultSyncDelay  = 300 * time.Millisecond
	defaultEchoWindow = time.Second
)

func NewSynchronizer(store *Store, nav Navigator) *Synchronizer {
	return &Synchronizer{
		store:      store,
		nav:        nav,
		deb:        newDebouncer(),
		delay:      defaultSyncDelay,
		echoWindow: defaultEchoWindow,
	}
}

// SetDelay overrides the write debounce window. Mainly for tests.
func (s *Synchronizer) SetDelay(d time.Duration) { s.delay = d }

// SetEchoWindow overrides how long a self-write may take to echo back from
// the Navigator. Mainly for tests.
func (s *Synchronizer) SetEchoWindow(d time.Duration) { s.echoWindow = d }

// Hydrate applies the current URL to the store once. Call before Start.
func (s *Synchronizer) Hydrate() {
	parsed := ParseQuery(s.nav.Query())
	if !parsed.Equal(s.store.Filters()) {
		s.store.Apply(parsed, OriginExternalNav)
	}
}

// Start begins mirroring user edits into the URL.
func (s *Synchronizer) Start() {
	s.unsubscribe = s.store.Subscribe(func(ch Change) {
		if ch.Origin != OriginUserEdit {
			return
		}
		s.deb.Arm(s.delay, s.write)
	})
}

// Stop cancels any pending write and detaches from the store.
func (s *Synchronizer) Stop() {
	s.deb.Cancel()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// HandleNavigation reacts to a URL change reported by the Navigator. A change
// we just wrote ourselves is ignored; the guard expires after the echo window
// so a Navigator that never echoes cannot swallow a later genuine navigation
// to the same encoding. An external change (back/forward) is applied to the
// store only when it is significant: all fields are diffed except Status,
// which is excluded because quick status toggles intentionally lag the URL.
func (s *Synchronizer) HandleNavigation(values url.Values) {
	encoded := values.Encode()

	s.mu.Lock()
	if encoded == s.lastWritten && time.Since(s.writtenAt) <= s.echoWindow {
		s.lastWritten = ""
		s.mu.Unlock()
		return
	}
	s.lastWritten = ""
	s.mu.Unlock()

	parsed := ParseQuery(values)
	if parsed.EqualIgnoringStatus(s.store.Filters()) {
		return
	}
	s.store.Apply(parsed, OriginExternalNav)
}

func (s *Synchronizer) write() {
	encoded := EncodeQuery(s.store.Filters()).Encode()
	s.mu.Lock()
	s.lastWritten = encoded
	s.writtenAt = time.Now()
	s.mu.Unlock()
	s.nav.Replace(encoded)
}
