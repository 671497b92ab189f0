package aggregate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadeck/internal/config"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
)

func TestStreamsRankedByResolution(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/stream/movie/tt1.json": models.StreamResponse{Streams: []models.Stream{
			{Name: "Addon 720p", Title: "The.Movie.720p.WEB-DL", URL: "https://play/720"},
			{Name: "Addon 2160p", Title: "The.Movie.2160p.Remux", URL: "https://play/2160"},
			{Name: "Addon 1080p", Title: "The.Movie.1080p.BluRay", URL: "https://play/1080"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	candidates, err := env.streamResolver().Resolve(context.Background(), "movie", "tt1", 0, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "2160p", candidates[0].Attributes.Resolution)
	assert.Equal(t, "1080p", candidates[1].Attributes.Resolution)
	assert.Equal(t, "720p", candidates[2].Attributes.Resolution)
}

func TestStreamsQualityWordFallback(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/stream/movie/tt1.json": models.StreamResponse{Streams: []models.Stream{
			{Name: "Addon SD", URL: "https://play/sd"},
			{Name: "Addon HD", URL: "https://play/hd"},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	candidates, err := env.streamResolver().Resolve(context.Background(), "movie", "tt1", 0, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://play/hd", candidates[0].URL)
	assert.Equal(t, "https://play/sd", candidates[1].URL)
}

func TestStreamsSeriesCompositeID(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		writeJSON(t, w, models.StreamResponse{Streams: []models.Stream{
			{Name: "Addon 1080p", URL: "https://play/1"},
		}})
	}))
	t.Cleanup(server.Close)

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	_, err := env.streamResolver().Resolve(context.Background(), "series", "tt1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "/stream/series/tt1:1:2.json", requestedPath)
}

func TestStreamsExternalHandoff(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/stream/movie/tt1.json": models.StreamResponse{Streams: []models.Stream{
			{Name: "Web Player", URL: "https://site/watch", External: true},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	candidates, err := env.streamResolver().Resolve(context.Background(), "movie", "tt1", 0, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Empty(t, candidates[0].URL)
	assert.Equal(t, "https://site/watch", candidates[0].ExternalURL)
}

func TestStreamsTMDBIDWithoutKey(t *testing.T) {
	server := addonServer(t, map[string]interface{}{})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	_, err := env.streamResolver().Resolve(context.Background(), "movie", "tmdb:603", 0, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTranslation))

	var re *apperrors.ResolveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "TMDB API key missing. Cannot look up IMDb ID.", re.Message)
}

func TestStreamsTMDBIDTranslated(t *testing.T) {
	tmdbAPI := addonServer(t, map[string]interface{}{
		"/movie/603/external_ids": models.TMDBExternalIDs{IMDBID: "tt0133093"},
	})
	addon := addonServer(t, map[string]interface{}{
		"/stream/movie/tt0133093.json": models.StreamResponse{Streams: []models.Stream{
			{Name: "Addon 1080p", URL: "https://play/matrix"},
		}},
	})

	env := newTestEnv()
	env.tmdb.SetBaseURL(tmdbAPI.URL)
	saveSettings(t, env.store, &config.Settings{
		Providers: []config.Provider{testProvider("a", "A", addon.URL)},
		MetadataProvider: config.MetadataProviderConfig{
			APIKey:  testAPIKey,
			Enabled: true,
		},
	})

	candidates, err := env.streamResolver().Resolve(context.Background(), "movie", "tmdb:603", 0, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://play/matrix", candidates[0].URL)
}

func TestStreamsNoProvidersConfigured(t *testing.T) {
	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{})

	_, err := env.streamResolver().Resolve(context.Background(), "movie", "tt1", 0, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotConfigured))
	assert.Contains(t, err.Error(), "install a stream addon")
}

func TestStreamsEmptyResult(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/stream/movie/tt1.json": models.StreamResponse{},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	_, err := env.streamResolver().Resolve(context.Background(), "movie", "tt1", 0, 0)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEmptyResult))
}

func TestStreamsAttributeEnrichment(t *testing.T) {
	server := addonServer(t, map[string]interface{}{
		"/stream/movie/tt1.json": models.StreamResponse{Streams: []models.Stream{
			{
				Name:  "A 4K",
				Title: "The.Movie.2160p.WEB-DL.DV.x265.Atmos-GROUP",
				URL:   "https://play/1",
				BehaviorHints: &models.StreamBehaviorHints{
					VideoSize: 4 << 30,
					Filename:  "The.Movie.2160p.WEB-DL.DV.x265.Atmos-GROUP.mkv",
				},
			},
		}},
	})

	env := newTestEnv()
	saveSettings(t, env.store, &config.Settings{Providers: []config.Provider{
		testProvider("a", "A", server.URL),
	}})

	candidates, err := env.streamResolver().Resolve(context.Background(), "movie", "tt1", 0, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	attrs := candidates[0].Attributes
	assert.Equal(t, "2160p", attrs.Resolution)
	assert.Equal(t, "WEB-DL", attrs.Format)
	assert.Equal(t, "H.265", attrs.Codec)
	assert.Equal(t, "Atmos", attrs.Audio)
	assert.True(t, attrs.DolbyVision)
	assert.True(t, attrs.HDR)
	assert.Equal(t, "4.00 GB", attrs.Size)
}
