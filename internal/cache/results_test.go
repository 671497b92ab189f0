package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadeck/internal/models"
	"mediadeck/pkg/logger"
)

type fakePersister struct {
	saved     map[string][]models.AggregatedRow
	signature map[string]string
	saveErr   error
	loadErr   error
	deleteErr error
}

func newFakePersister() *fakePersister {
	return &fakePersister{
		saved:     make(map[string][]models.AggregatedRow),
		signature: make(map[string]string),
	}
}

func (p *fakePersister) SaveRows(kind string, rows []models.AggregatedRow, signature string) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved[kind] = rows
	p.signature[kind] = signature
	return nil
}

func (p *fakePersister) LoadRows(kind string) ([]models.AggregatedRow, string, error) {
	if p.loadErr != nil {
		return nil, "", p.loadErr
	}
	return p.saved[kind], p.signature[kind], nil
}

func (p *fakePersister) DeleteRows(kind string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	delete(p.saved, kind)
	delete(p.signature, kind)
	return nil
}

func sampleRows() []models.AggregatedRow {
	return []models.AggregatedRow{
		{ID: "addon/movie/top", Title: "Top Movies", Items: []models.MediaItem{
			{ID: "tt0111161", Name: "The Shawshank Redemption", Type: "movie"},
		}},
	}
}

func TestResultCacheRoundTrip(t *testing.T) {
	c := NewResultCache(nil, logger.New())

	c.Put(HomeQuery, sampleRows(), "sig-a")

	rows, ok := c.Get(HomeQuery, "sig-a")
	require.True(t, ok)
	assert.Equal(t, sampleRows(), rows)
}

func TestResultCacheSignatureMismatchEvicts(t *testing.T) {
	c := NewResultCache(nil, logger.New())

	c.Put(HomeQuery, sampleRows(), "sig-a")

	_, ok := c.Get(HomeQuery, "sig-b")
	assert.False(t, ok)

	// The stale entry is gone even when asked with the original signature.
	_, ok = c.Get(HomeQuery, "sig-a")
	assert.False(t, ok)
}

func TestResultCacheSignatureMismatchEvictsPersistedCopy(t *testing.T) {
	persister := newFakePersister()
	c := NewResultCache(persister, logger.New())

	c.Put(SearchQuery("batman"), sampleRows(), "sig-old")

	_, ok := c.Get(SearchQuery("batman"), "sig-new")
	assert.False(t, ok)

	// The persisted copy is gone too, so a restart cannot revive stale rows.
	rows, signature, err := persister.LoadRows("search:batman")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, signature)
}

func TestResultCacheSnapshotEvictsPersistedCopies(t *testing.T) {
	persister := newFakePersister()
	c := NewResultCache(persister, logger.New())

	c.Put(HomeQuery, sampleRows(), "sig-a")
	c.Put(SearchQuery("old"), sampleRows(), "sig-old")

	rows := c.Snapshot("sig-a")
	assert.Len(t, rows, 1)

	assert.NotEmpty(t, persister.saved[string(HomeQuery)])
	assert.Empty(t, persister.saved["search:old"])
}

func TestResultCacheDeleteFailureIsNonFatal(t *testing.T) {
	persister := newFakePersister()
	persister.deleteErr = errors.New("disk full")
	c := NewResultCache(persister, logger.New())

	c.Put(HomeQuery, sampleRows(), "sig-a")

	_, ok := c.Get(HomeQuery, "sig-b")
	assert.False(t, ok)

	_, ok = c.Get(HomeQuery, "sig-a")
	assert.False(t, ok)
}

func TestResultCacheWritesThrough(t *testing.T) {
	persister := newFakePersister()
	c := NewResultCache(persister, logger.New())

	c.Put(SearchQuery("batman"), sampleRows(), "sig-a")

	assert.Equal(t, sampleRows(), persister.saved["search:batman"])
	assert.Equal(t, "sig-a", persister.signature["search:batman"])
}

func TestResultCachePersistFailureIsNonFatal(t *testing.T) {
	persister := newFakePersister()
	persister.saveErr = errors.New("disk full")
	c := NewResultCache(persister, logger.New())

	c.Put(HomeQuery, sampleRows(), "sig-a")

	rows, ok := c.Get(HomeQuery, "sig-a")
	require.True(t, ok)
	assert.Equal(t, sampleRows(), rows)
}

func TestResultCacheWarm(t *testing.T) {
	persister := newFakePersister()
	require.NoError(t, persister.SaveRows(string(HomeQuery), sampleRows(), "sig-a"))

	c := NewResultCache(persister, logger.New())
	c.Warm(HomeQuery)

	rows, ok := c.Get(HomeQuery, "sig-a")
	require.True(t, ok)
	assert.Equal(t, sampleRows(), rows)
}

func TestResultCacheSnapshot(t *testing.T) {
	c := NewResultCache(nil, logger.New())

	c.Put(HomeQuery, sampleRows(), "sig-a")
	c.Put(SearchQuery("old"), sampleRows(), "sig-old")

	rows := c.Snapshot("sig-a")
	assert.Len(t, rows, 1)

	// The mismatching search entry was evicted by the snapshot pass.
	_, ok := c.Get(SearchQuery("old"), "sig-old")
	assert.False(t, ok)
}
