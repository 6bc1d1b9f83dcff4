package feed_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/notifeed/notifeed/pkg/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	data    []byte
	loadErr error
}

func (m *memStorage) Load() ([]byte, error) { return m.data, m.loadErr }
func (m *memStorage) Save(data []byte) error {
	m.data = data
	return nil
}

func TestSavedFilterStore_AddListRemove(t *testing.T) {
	store := feed.NewSavedFilterStore(&memStorage{}, nil)

	f := feed.DefaultFilters()
	f.Status = feed.StatusUnread
	preset, err := store.Add("unread only", f)
	require.NoError(t, err)
	require.NotEmpty(t, preset.ID)

	_, err = store.Add("everything", feed.DefaultFilters())
	require.NoError(t, err)

	presets := store.List()
	require.Len(t, presets, 2)
	assert.Equal(t, "everything", presets[0].Name) // newest first
	assert.Equal(t, feed.StatusUnread, presets[1].Filters.Status)

	require.NoError(t, store.Remove(preset.ID))
	assert.Len(t, store.List(), 1)

	assert.ErrorIs(t, store.Remove("missing"), feed.ErrSavedFilterNotFound)
}

func TestSavedFilterStore_CorruptJSONFallsBackToEmpty(t *testing.T) {
	store := feed.NewSavedFilterStore(&memStorage{data: []byte("{nonsense")}, nil)
	assert.Empty(t, store.List())

	// And the store remains usable afterwards.
	_, err := store.Add("fresh", feed.DefaultFilters())
	require.NoError(t, err)
	assert.Len(t, store.List(), 1)
}

func TestSavedFilterStore_LoadErrorTreatedAsEmpty(t *testing.T) {
	store := feed.NewSavedFilterStore(&memStorage{loadErr: errors.New("disk gone")}, nil)
	assert.Empty(t, store.List())
}

func TestFileStorage_RoundTripAndMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_filters.json")
	fs := feed.FileStorage{Path: path}

	data, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, fs.Save([]byte(`[]`)))
	data, err = fs.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)
}
