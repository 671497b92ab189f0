// Package tmdb implements the metadata-provider client. It serves catalog
// category listings and search when the user has supplied an API key, plus
// the images and external-IDs sub-endpoints. It is never used for stream
// resolution.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mediadeck/internal/cache"
	"mediadeck/internal/constants"
	"mediadeck/internal/models"
	"mediadeck/pkg/httputil"
	"mediadeck/pkg/logger"
	"mediadeck/pkg/ratelimiter"
	"mediadeck/pkg/security"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p"

	posterSize   = "w342"
	backdropSize = "w780"
)

// Category is one predefined listing category.
type Category struct {
	Key         string
	Title       string
	Path        string
	ContentType string
}

// Categories returns the predefined home listing categories.
func Categories() []Category {
	return []Category{
		{Key: "trending-movie", Title: "Trending Movies", Path: "/trending/movie/week", ContentType: "movie"},
		{Key: "popular-movie", Title: "Popular Movies", Path: "/movie/popular", ContentType: "movie"},
		{Key: "top-movie", Title: "Top Rated Movies", Path: "/movie/top_rated", ContentType: "movie"},
		{Key: "trending-series", Title: "Trending TV Shows", Path: "/trending/tv/week", ContentType: "series"},
		{Key: "popular-series", Title: "Popular TV Shows", Path: "/tv/popular", ContentType: "series"},
		{Key: "top-series", Title: "Top Rated TV Shows", Path: "/tv/top_rated", ContentType: "series"},
	}
}

// Client is the TMDB API client. The API key travels as a query-string
// parameter, which is what the TMDB v3 API requires.
type Client struct {
	apiKey      string
	baseURL     string
	cache       *cache.LRU[string]
	rateLimiter *ratelimiter.TokenBucket
	httpClient  *http.Client
	logger      logger.Logger
	validator   *security.APIKeyValidator
}

// NewClient creates a Client. The key may be empty and set later from the
// persisted configuration.
func NewClient(apiKey string, log logger.Logger) *Client {
	validator := security.NewAPIKeyValidator()

	sanitized := ""
	if apiKey != "" {
		sanitized = validator.SanitizeAPIKey(apiKey)
	}

	return &Client{
		apiKey:      sanitized,
		baseURL:     defaultBaseURL,
		cache:       cache.NewLRU[string](constants.DefaultCacheSize, constants.DefaultCacheTTL),
		rateLimiter: ratelimiter.NewTokenBucket(20, 5),
		httpClient:  httputil.NewHTTPClient(10 * time.Second),
		logger:      log,
		validator:   validator,
	}
}

// SetAPIKey sanitizes and installs a new API key.
func (c *Client) SetAPIKey(apiKey string) {
	sanitized := c.validator.SanitizeAPIKey(apiKey)
	if apiKey != "" && !c.validator.IsValidTMDBKey(sanitized) {
		c.logger.Warnf("[TMDB] refusing API key with invalid format (key: %s)",
			c.validator.MaskAPIKey(sanitized))
		return
	}
	c.apiKey = sanitized
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// StartCleanup begins periodic expiry of cached responses until ctx ends.
func (c *Client) StartCleanup(ctx context.Context) {
	c.cache.StartCleanup(ctx)
}

// List fetches one category listing and maps it to catalog items. Entries
// without a poster are dropped.
func (c *Client) List(ctx context.Context, cat Category) ([]models.MediaItem, error) {
	var resp models.TMDBListResponse
	if err := c.getJSON(ctx, cat.Path, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		if item, ok := c.listItem(r, cat.ContentType); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// SearchMulti runs a mixed movie/series search.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]models.MediaItem, error) {
	params := url.Values{"query": []string{query}}

	var resp models.TMDBListResponse
	if err := c.getJSON(ctx, "/search/multi", params, &resp); err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		contentType := ""
		switch r.MediaType {
		case "movie":
			contentType = "movie"
		case "tv":
			contentType = "series"
		default:
			continue
		}
		if item, ok := c.listItem(r, contentType); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *Client) listItem(r models.TMDBListItem, contentType string) (models.MediaItem, bool) {
	if r.PosterPath == "" {
		return models.MediaItem{}, false
	}

	name := r.Title
	if name == "" {
		name = r.Name
	}

	return models.MediaItem{
		ID:     "tmdb:" + strconv.FormatInt(r.ID, 10),
		Name:   name,
		Poster: imageBaseURL + "/" + posterSize + r.PosterPath,
		Type:   contentType,
	}, true
}

// BestBackdrop returns the URL of the item's best backdrop: the
// highest-voted English-language asset, falling back to the highest-voted
// asset of any language.
func (c *Client) BestBackdrop(ctx context.Context, contentType string, tmdbID string) (string, error) {
	cacheKey := "backdrop:" + contentType + ":" + tmdbID
	if cached, found := c.cache.Get(cacheKey); found {
		return cached, nil
	}

	var resp models.TMDBImagesResponse
	path := fmt.Sprintf("/%s/%s/images", apiMediaType(contentType), url.PathEscape(tmdbID))
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return "", err
	}

	best := pickBackdrop(resp.Backdrops)
	if best == "" {
		return "", fmt.Errorf("no backdrops for tmdb:%s", tmdbID)
	}

	full := imageBaseURL + "/" + backdropSize + best
	c.cache.Set(cacheKey, full)
	return full, nil
}

func pickBackdrop(backdrops []models.TMDBImage) string {
	var bestEnglish, bestAny *models.TMDBImage
	for i := range backdrops {
		img := &backdrops[i]
		if bestAny == nil || img.VoteAverage > bestAny.VoteAverage {
			bestAny = img
		}
		if img.ISO639 == "en" && (bestEnglish == nil || img.VoteAverage > bestEnglish.VoteAverage) {
			bestEnglish = img
		}
	}
	if bestEnglish != nil {
		return bestEnglish.FilePath
	}
	if bestAny != nil {
		return bestAny.FilePath
	}
	return ""
}

// IMDBID translates a TMDB identifier to the IMDb scheme via the
// external-IDs sub-endpoint. Translations are cached for the session.
func (c *Client) IMDBID(ctx context.Context, contentType string, tmdbID string) (string, error) {
	cacheKey := "imdb:" + contentType + ":" + tmdbID
	if cached, found := c.cache.Get(cacheKey); found {
		return cached, nil
	}

	var resp models.TMDBExternalIDs
	path := fmt.Sprintf("/%s/%s/external_ids", apiMediaType(contentType), url.PathEscape(tmdbID))
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.IMDBID == "" {
		return "", fmt.Errorf("no IMDb ID known for tmdb:%s", tmdbID)
	}

	c.cache.Set(cacheKey, resp.IMDBID)
	return resp.IMDBID, nil
}

func apiMediaType(contentType string) string {
	if contentType == "series" {
		return "tv"
	}
	return "movie"
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("TMDB API key not configured")
	}
	if !c.validator.IsValidTMDBKey(c.apiKey) {
		return fmt.Errorf("invalid TMDB API key format (key: %s)", c.validator.MaskAPIKey(c.apiKey))
	}

	c.rateLimiter.Wait()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build TMDB request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch TMDB data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}
