// Package models defines the wire formats spoken by addons and the metadata
// provider, plus the aggregated domain types produced by the resolution core.
package models

import "encoding/json"

// Manifest describes an addon as returned by its manifest.json endpoint.
type Manifest struct {
	ID          string     `json:"id"`
	Version     string     `json:"version"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Types       []string   `json:"types"`
	Resources   []Resource `json:"resources"`
	Catalogs    []Catalog  `json:"catalogs"`
}

// Resource is one entry of a manifest's resources list. Addons declare
// resources either as a bare string ("stream") or as an object restricting
// the resource to specific content types.
type Resource struct {
	Name  string   `json:"name"`
	Types []string `json:"types,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		r.Types = nil
		return nil
	}

	type resourceObject Resource
	var obj resourceObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = Resource(obj)
	return nil
}

// Catalog is one catalog declared by an addon manifest.
type Catalog struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Meta is a single content entry as served by addon catalog and meta endpoints.
type Meta struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Name          string   `json:"name"`
	Poster        string   `json:"poster,omitempty"`
	Background    string   `json:"background,omitempty"`
	Logo          string   `json:"logo,omitempty"`
	Description   string   `json:"description,omitempty"`
	ReleaseInfo   string   `json:"releaseInfo,omitempty"`
	Runtime       string   `json:"runtime,omitempty"`
	IMDBRating    float64  `json:"imdbRating,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Director      []string `json:"director,omitempty"`
	Certification string   `json:"certification,omitempty"`
	Videos        []Video  `json:"videos,omitempty"`
	Episodes      []Video  `json:"episodes,omitempty"`
}

// Video is an episode entry inside a series meta record. Older addon schemas
// omit the season field for flat episode lists.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Name      string `json:"name,omitempty"`
	Season    *int   `json:"season,omitempty"`
	Episode   int    `json:"episode,omitempty"`
	Released  string `json:"released,omitempty"`
	Overview  string `json:"overview,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Runtime   string `json:"runtime,omitempty"`
}

// Stream is one playable candidate as served by an addon stream endpoint.
type Stream struct {
	Name          string               `json:"name,omitempty"`
	Title         string               `json:"title,omitempty"`
	URL           string               `json:"url,omitempty"`
	Description   string               `json:"description,omitempty"`
	External      bool                 `json:"external,omitempty"`
	ExternalURL   string               `json:"externalUrl,omitempty"`
	BehaviorHints *StreamBehaviorHints `json:"behaviorHints,omitempty"`
}

// StreamBehaviorHints carries optional per-stream hints from the addon.
type StreamBehaviorHints struct {
	VideoSize int64  `json:"videoSize,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// Response envelopes, one strict shape per addon endpoint.

type CatalogResponse struct {
	Metas []Meta `json:"metas"`
}

type MetaResponse struct {
	Meta Meta `json:"meta"`
}

type StreamResponse struct {
	Streams []Stream `json:"streams"`
}
