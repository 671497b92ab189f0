package aggregate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"mediadeck/internal/addon"
	"mediadeck/internal/cache"
	"mediadeck/internal/config"
	"mediadeck/internal/models"
	"mediadeck/internal/tmdb"
	"mediadeck/pkg/logger"
)

const testAPIKey = "0123456789abcdef0123456789abcdef"

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// addonServer serves canned responses keyed by request path.
func addonServer(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, v)
	}))
	t.Cleanup(server.Close)
	return server
}

// testProvider builds an installed addon with every declared catalog enabled.
func testProvider(id, name, baseURL string, catalogs ...models.Catalog) config.Provider {
	p := config.Provider{
		ID:      id,
		Name:    name,
		BaseURL: baseURL,
		Resources: []models.Resource{
			{Name: "catalog"}, {Name: "meta"}, {Name: "stream"},
		},
		Types:           []string{"movie", "series"},
		Catalogs:        catalogs,
		EnabledCatalogs: make(map[string]bool, len(catalogs)),
	}
	for _, c := range catalogs {
		p.EnabledCatalogs[config.CatalogKey(c.Type, c.ID)] = true
	}
	return p
}

func saveSettings(t *testing.T, store config.Store, settings *config.Settings) {
	t.Helper()
	require.NoError(t, store.Save(settings))
}

type testEnv struct {
	store   *config.MemoryStore
	results *cache.ResultCache
	addons  *addon.Client
	tmdb    *tmdb.Client
	logger  logger.Logger
}

func newTestEnv() *testEnv {
	log := logger.New()
	return &testEnv{
		store:   config.NewMemoryStore(),
		results: cache.NewResultCache(nil, log),
		addons:  addon.NewClient(log),
		tmdb:    tmdb.NewClient("", log),
		logger:  log,
	}
}

func (e *testEnv) catalogAggregator() *CatalogAggregator {
	return NewCatalogAggregator(e.store, e.addons, e.tmdb, e.results, e.logger)
}

func (e *testEnv) metadataResolver() *MetadataResolver {
	return NewMetadataResolver(e.store, e.addons, e.results, e.logger)
}

func (e *testEnv) seasonResolver() *SeasonEpisodeResolver {
	return NewSeasonEpisodeResolver(e.store, e.addons, e.logger)
}

func (e *testEnv) streamResolver() *StreamResolver {
	return NewStreamResolver(e.store, e.addons, e.tmdb, e.logger)
}

func intp(v int) *int { return &v }
