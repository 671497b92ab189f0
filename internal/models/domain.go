package models

// RowOrigin identifies which kind of upstream produced an aggregated row.
type RowOrigin string

const (
	OriginAddon RowOrigin = "addon"
	OriginTMDB  RowOrigin = "tmdb"
)

// MediaItem is one tile of an aggregated catalog row. The ID is namespaced:
// addon-origin items use the addon's native identifier (usually "tt..."),
// metadata-provider items are prefixed with "tmdb:".
type MediaItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Poster  string `json:"poster"`
	Type    string `json:"type"`
	Loading bool   `json:"loading,omitempty"`
}

// AggregatedRow is one merged, deduplicated catalog row.
type AggregatedRow struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Items  []MediaItem `json:"items"`
	Origin RowOrigin   `json:"origin"`
}

// ContentRecord is the detail metadata for a single content item. It is built
// transiently per detail request and never persisted.
type ContentRecord struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Poster        string   `json:"poster,omitempty"`
	Background    string   `json:"background,omitempty"`
	Logo          string   `json:"logo,omitempty"`
	Description   string   `json:"description,omitempty"`
	ReleaseInfo   string   `json:"releaseInfo,omitempty"`
	Runtime       string   `json:"runtime,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Director      []string `json:"director,omitempty"`
	Certification string   `json:"certification,omitempty"`
	Seasons       []int    `json:"seasons,omitempty"`
	Partial       bool     `json:"partial,omitempty"`
}

// Complete reports whether the record satisfies the completeness contract:
// a description plus at least one large image.
func (r *ContentRecord) Complete() bool {
	return r != nil && r.Description != "" && (r.Poster != "" || r.Background != "")
}

// EpisodeRecord is one episode of a series season.
type EpisodeRecord struct {
	ID        string `json:"id"`
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	Title     string `json:"title"`
	Overview  string `json:"overview,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Runtime   string `json:"runtime,omitempty"`
	Released  string `json:"released,omitempty"`
}

// ExtractedAttributes is the structured attribute bag parsed out of free-text
// stream labels. An attribute that failed to match is simply zero.
type ExtractedAttributes struct {
	Resolution   string `json:"resolution,omitempty"`
	Format       string `json:"format,omitempty"`
	Codec        string `json:"codec,omitempty"`
	Audio        string `json:"audio,omitempty"`
	Language     string `json:"language,omitempty"`
	HDR          bool   `json:"hdr,omitempty"`
	DolbyVision  bool   `json:"dolbyVision,omitempty"`
	TenBit       bool   `json:"tenBit,omitempty"`
	ReleaseGroup string `json:"releaseGroup,omitempty"`
	CachedOn     string `json:"cachedOn,omitempty"`
	Size         string `json:"size,omitempty"`
}

// StreamCandidate is one playable stream after enrichment. Exactly one of
// URL and ExternalURL is authoritative; a set ExternalURL means the
// presentation layer must hand off to an external agent.
type StreamCandidate struct {
	ProviderID   string              `json:"providerId"`
	ProviderName string              `json:"providerName"`
	Label        string              `json:"label"`
	Description  string              `json:"description,omitempty"`
	URL          string              `json:"url,omitempty"`
	ExternalURL  string              `json:"externalUrl,omitempty"`
	Attributes   ExtractedAttributes `json:"attributes"`
}
