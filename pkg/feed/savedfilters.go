package feed

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SavedFilter is a named filter preset. Presets live in client-local storage
// only; they are never synced to the server.
type SavedFilter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filters   Filters   `json:"filters"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage persists the JSON-serialized preset array under a fixed key.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStorage keeps presets in a single JSON file.
type FileStorage struct {
	Path string
}

func (s FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (s FileStorage) Save(data []byte) error {
	return os.WriteFile(s.Path, data, 0o600)
}

var ErrSavedFilterNotFound = errors.New("feed: saved filter not found")

// SavedFilterStore manages filter presets over a Storage backend. Corrupt
// persisted state is logged and treated as an empty list.
type SavedFilterStore struct {
	mu      sync.Mutex
	storage Storage
	log     *logrus.Entry
}

func NewSavedFilterStore(storage Storage, log *logrus.Logger) *SavedFilterStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SavedFilterStore{storage: storage, log: log.WithField("component", "feed.saved-filters")}
}

// List returns all presets, newest first.
func (s *SavedFilterStore) List() []SavedFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add persists a new preset from a snapshot of the given filters.
func (s *SavedFilterStore) Add(name string, f Filters) (SavedFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preset := SavedFilter{
		ID:        uuid.NewString(),
		Name:      name,
		Filters:   f.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	presets := append([]SavedFilter{preset}, s.load()...)
	if err := s.save(presets); err != nil {
		return SavedFilter{}, err
	}
	return preset, nil
}

// Remove deletes the preset with the given id.
func (s *SavedFilterStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets := s.load()
	out := presets[:0]
	found := false
	for _, p := range presets {
		if p.ID == id {
			found = true
			continue
		}
		out = append(out, p)
	}
	if !found {
		return ErrSavedFilterNotFound
	}
	return s.save(out)
}

func (s *SavedFilterStore) load() []SavedFilter {
	data, err := s.storage.Load()
	if err != nil {
		s.log.WithError(err).Warn("loading saved filters failed")
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var presets []SavedFilter
	if err := json.Unmarshal(data, &presets); err != nil {
		s.log.WithError(err).Warn("corrupt saved filters, starting empty")
		return nil
	}
	return presets
}

func (s *SavedFilterStore) save(presets []SavedFilter) error {
	data, err := json.Marshal(presets)
	if err != nil {
		return err
	}
	return s.storage.Save(data)
}
