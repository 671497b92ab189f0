package aggregate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadeck/internal/config"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
)

func TestHomeSingleCatalogRowTitle(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/catalog/movie/top.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "Alpha", Poster: "https://img/a.jpg"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
	}})

	rows, err := env.catalogAggregator().Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Top • A", rows[0].Title)
	assert.Equal(t, "a/movie/top", rows[0].ID)
	assert.Equal(t, models.OriginAddon, rows[0].Origin)
}

func TestHomeTypeSuffixDisambiguatesSameName(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/catalog/movie/top.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "Alpha", Poster: "https://img/a.jpg"},
		}},
		"/catalog/series/top.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt2", Name: "Beta", Poster: "https://img/b.jpg"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("cinemeta", "Cinemeta", server.URL,
			models.Catalog{Type: "movie", ID: "top", Name: "Top"},
			models.Catalog{Type: "series", ID: "top", Name: "Top"},
		),
	}})

	rows, err := env.catalogAggregator().Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Top Movies • Cinemeta", rows[0].Title)
	assert.Equal(t, "Top TV Shows • Cinemeta", rows[1].Title)
}

func TestHomeDropsItemsWithoutPoster(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/catalog/movie/top.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "With Poster", Poster: "https://img/a.jpg"},
			{ID: "tt2", Name: "No Poster"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
	}})

	rows, err := env.catalogAggregator().Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Items, 1)
	assert.Equal(t, "tt1", rows[0].Items[0].ID)
}

func TestHomeRowsSortedByTitle(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/catalog/movie/z.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "One", Poster: "https://img/1.jpg"},
		}},
		"/catalog/movie/a.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt2", Name: "Two", Poster: "https://img/2.jpg"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("x", "X", server.URL,
			models.Catalog{Type: "movie", ID: "z", Name: "Zeta"},
			models.Catalog{Type: "movie", ID: "a", Name: "Alpha"},
		),
	}})

	rows, err := env.catalogAggregator().Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha • X", rows[0].Title)
	assert.Equal(t, "Zeta • X", rows[1].Title)
}

func TestHomeAbsorbsSingleProviderFailure(t *testing.T) {
	healthy := addonServer(t, map[string]interface{}{
		"/catalog/movie/top.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "Alpha", Poster: "https://img/a.jpg"},
		}},
	})
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("good", "Good", healthy.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
		testProvider("bad", "Bad", broken.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
	}})

	rows, err := env.catalogAggregator().Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "good/movie/top", rows[0].ID)
}

func TestHomeNothingConfigured(t *testing.T) {
	env := newTestEnv()

	_, err := env.catalogAggregator().Home(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotConfigured))
}

func TestHomeEmptyResult(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/catalog/movie/top.json": models.CatalogResponse{},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
	}})

	_, err := env.catalogAggregator().Home(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEmptyResult))
}

func TestHomeCacheHitSkipsFanOut(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "Alpha", Poster: "https://img/a.jpg"},
		}})
	}))
	t.Cleanup(server.Close)

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
	}})
	aggregator := env.catalogAggregator()

	first, err := aggregator.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load())

	second, err := aggregator.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load())
	assert.Equal(t, first, second)
}

func TestHomeConfigChangeInvalidatesCache(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt1", Name: "Alpha", Poster: "https://img/a.jpg"},
		}})
	}))
	t.Cleanup(server.Close)

	env := newTestEnv()
	provider := testProvider("a", "A", server.URL,
		models.Catalog{Type: "movie", ID: "top", Name: "Top"},
		models.Catalog{Type: "series", ID: "top", Name: "Top"},
	)
	provider.EnabledCatalogs["series/top"] = false
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{provider}})
	aggregator := env.catalogAggregator()

	_, err := aggregator.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load())

	// Enabling another catalog changes the signature, so the next request
	// re-runs the fan-out instead of serving the stale entry.
	provider.EnabledCatalogs["series/top"] = true
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{provider}})

	_, err = aggregator.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), requests.Load())
}

func TestSearchMergesAndDeduplicatesAcrossAddons(t *testing.T) {
	first := addonServer(t, map[string]interface{}{
		"/catalog/movie/top/search=shawshank.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt0111161", Name: "The Shawshank Redemption", Poster: "https://img/s1.jpg"},
		}},
	})
	second := addonServer(t, map[string]interface{}{
		"/catalog/movie/all/search=shawshank.json": models.CatalogResponse{Metas: []models.Meta{
			{ID: "tt0111161", Name: "The Shawshank Redemption", Poster: "https://img/s2.jpg"},
			{ID: "tt0468569", Name: "The Dark Knight", Poster: "https://img/d.jpg"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", first.URL, models.Catalog{Type: "movie", ID: "top", Name: "Top"}),
		testProvider("b", "B", second.URL, models.Catalog{Type: "movie", ID: "all", Name: "All"}),
	}})

	rows, err := env.catalogAggregator().Search(context.Background(), "shawshank")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "search", rows[0].ID)
	assert.Equal(t, "Search Results", rows[0].Title)

	ids := make(map[string]int)
	for _, item := range rows[0].Items {
		ids[item.ID]++
	}
	assert.Equal(t, 1, ids["tt0111161"])
	assert.Equal(t, 1, ids["tt0468569"])
}

// tmdbServer fakes the metadata provider API: six category listings plus
// empty image sets for the background enhancement pass.
func tmdbServer(t *testing.T) *httptest.Server {
	t.Helper()
	listing := models.TMDBListResponse{Results: []models.TMDBListItem{
		{ID: 42, Title: "Alpha", PosterPath: "/alpha.jpg"},
	}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/images"):
			writeJSON(t, w, models.TMDBImagesResponse{})
		case r.URL.Path == "/search/multi":
			writeJSON(t, w, models.TMDBListResponse{Results: []models.TMDBListItem{
				{ID: 7, MediaType: "movie", Title: "Found", PosterPath: "/found.jpg"},
			}})
		default:
			writeJSON(t, w, listing)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHomeMetadataModeSupersedesAddons(t *testing.T) {
	server := tmdbServer(t)

	env := newTestEnv()
	env.tmdb.SetBaseURL(server.URL)
	saveSettings(t, env.store, &config.Settings{
		MetadataProvider: config.MetadataProviderConfig{APIKey: testAPIKey, Enabled: true},
	})

	rows, err := env.catalogAggregator().Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.Equal(t, models.OriginTMDB, row.Origin)
		require.NotEmpty(t, row.Items)
		assert.Equal(t, "tmdb:42", row.Items[0].ID)
	}
}

func TestSearchMetadataModeSingleRow(t *testing.T) {
	server := tmdbServer(t)

	env := newTestEnv()
	env.tmdb.SetBaseURL(server.URL)
	saveSettings(t, env.store, &config.Settings{
		MetadataProvider: config.MetadataProviderConfig{APIKey: testAPIKey, Enabled: true},
	})

	rows, err := env.catalogAggregator().Search(context.Background(), "found")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "tmdb:search", rows[0].ID)
	assert.Equal(t, "Search Results", rows[0].Title)
	require.Len(t, rows[0].Items, 1)
	assert.Equal(t, "tmdb:7", rows[0].Items[0].ID)
}
