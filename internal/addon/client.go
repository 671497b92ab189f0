// Package addon implements the HTTP client for the addon provider protocol.
// Responses are parsed defensively into strict shapes; any shape mismatch or
// transport failure is classified as a transient provider error so a single
// broken addon never fails an aggregation.
package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
	"mediadeck/pkg/httputil"
	"mediadeck/pkg/logger"
)

// Client speaks the addon protocol against any manifest base URL.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a Client using the shared pooled HTTP client.
func NewClient(log logger.Logger) *Client {
	return &Client{
		httpClient: httputil.NewDefaultHTTPClient(),
		logger:     log,
	}
}

// Manifest fetches and validates the addon descriptor.
func (c *Client) Manifest(ctx context.Context, baseURL string) (*models.Manifest, error) {
	var manifest models.Manifest
	if err := c.getJSON(ctx, baseURL+"/manifest.json", &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Catalog fetches one catalog listing.
func (c *Client) Catalog(ctx context.Context, baseURL, contentType, catalogID string) ([]models.Meta, error) {
	endpoint := fmt.Sprintf("%s/catalog/%s/%s.json",
		baseURL, url.PathEscape(contentType), url.PathEscape(catalogID))

	var resp models.CatalogResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Metas, nil
}

// Search fetches one catalog listing filtered by the given query.
func (c *Client) Search(ctx context.Context, baseURL, contentType, catalogID, query string) ([]models.Meta, error) {
	endpoint := fmt.Sprintf("%s/catalog/%s/%s/search=%s.json",
		baseURL, url.PathEscape(contentType), url.PathEscape(catalogID), url.PathEscape(query))

	var resp models.CatalogResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Metas, nil
}

// Meta fetches the full detail record for one content item.
func (c *Client) Meta(ctx context.Context, baseURL, contentType, id string) (*models.Meta, error) {
	endpoint := fmt.Sprintf("%s/meta/%s/%s.json",
		baseURL, url.PathEscape(contentType), url.PathEscape(id))

	var resp models.MetaResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Meta.ID == "" && resp.Meta.Name == "" {
		return nil, apperrors.NewTransient(fmt.Sprintf("empty meta record from %s", baseURL), nil)
	}
	return &resp.Meta, nil
}

// SeasonMeta fetches the per-season detail record for a series.
func (c *Client) SeasonMeta(ctx context.Context, baseURL, contentType, id string, season int) (*models.Meta, error) {
	endpoint := fmt.Sprintf("%s/meta/%s/%s/season=%d.json",
		baseURL, url.PathEscape(contentType), url.PathEscape(id), season)

	var resp models.MetaResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp.Meta, nil
}

// Streams fetches the playable candidates for one content identifier. For
// series the identifier already carries the ":season:episode" suffix.
func (c *Client) Streams(ctx context.Context, baseURL, contentType, id string) ([]models.Stream, error) {
	endpoint := fmt.Sprintf("%s/stream/%s/%s.json",
		baseURL, url.PathEscape(contentType), escapeStreamID(id))

	var resp models.StreamResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Streams, nil
}

// escapeStreamID escapes a composite identifier while keeping the
// ":season:episode" separators intact.
func escapeStreamID(id string) string {
	parts := strings.Split(id, ":")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, ":")
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewTransient(fmt.Sprintf("invalid addon URL %s", endpoint), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransient(fmt.Sprintf("addon request failed: %s", endpoint), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewTransient(
			fmt.Sprintf("addon returned status %d for %s", resp.StatusCode, endpoint), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewTransient(fmt.Sprintf("malformed addon response from %s", endpoint), err)
	}
	return nil
}
