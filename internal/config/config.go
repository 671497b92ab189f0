// Package config holds the user configuration: the installed addon list with
// per-addon catalog selections and the metadata provider settings. The
// aggregation core depends only on the Store interface, never on a concrete
// storage mechanism.
package config

import (
	"sort"
	"strings"

	"mediadeck/internal/models"
)

// Provider is one installed addon. The provider list is the single source of
// truth for which endpoints are eligible for fan-out.
type Provider struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	BaseURL         string            `json:"baseUrl"`
	Resources       []models.Resource `json:"resources"`
	Types           []string          `json:"types"`
	Catalogs        []models.Catalog  `json:"catalogs"`
	EnabledCatalogs map[string]bool   `json:"enabledCatalogs"`
}

// CatalogKey is the identity of a declared catalog within a provider.
func CatalogKey(contentType, catalogID string) string {
	return contentType + "/" + catalogID
}

// CatalogEnabled reports whether the user has the given catalog enabled.
func (p *Provider) CatalogEnabled(contentType, catalogID string) bool {
	return p.EnabledCatalogs[CatalogKey(contentType, catalogID)]
}

// EnabledCatalogKeys returns the sorted set of enabled catalog keys.
func (p *Provider) EnabledCatalogKeys() []string {
	keys := make([]string, 0, len(p.EnabledCatalogs))
	for k, enabled := range p.EnabledCatalogs {
		if enabled {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// SupportsResource reports whether the addon declares the named resource for
// the given content type. A bare resource declaration without types falls
// back to the manifest-level types list.
func (p *Provider) SupportsResource(name, contentType string) bool {
	for _, r := range p.Resources {
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		types := r.Types
		if len(types) == 0 {
			types = p.Types
		}
		if len(types) == 0 {
			return true
		}
		for _, t := range types {
			if strings.EqualFold(t, contentType) {
				return true
			}
		}
	}
	return false
}

// MetadataProviderConfig configures the optional TMDB metadata provider.
// It is never used for stream resolution.
type MetadataProviderConfig struct {
	APIKey  string `json:"apiKey"`
	Enabled bool   `json:"enabled"`
}

// Active reports whether the metadata provider should supersede addon-based
// listing queries.
func (m MetadataProviderConfig) Active() bool {
	return m.Enabled && m.APIKey != ""
}

// Settings is the full persisted configuration blob.
type Settings struct {
	Providers        []Provider             `json:"providers"`
	MetadataProvider MetadataProviderConfig `json:"metadataProvider"`
}

// Clone returns a deep copy so aggregation passes can hold a stable snapshot
// while the configuration mutates underneath.
func (s *Settings) Clone() *Settings {
	out := &Settings{MetadataProvider: s.MetadataProvider}
	out.Providers = make([]Provider, len(s.Providers))
	for i, p := range s.Providers {
		cp := p
		cp.Resources = append([]models.Resource(nil), p.Resources...)
		cp.Types = append([]string(nil), p.Types...)
		cp.Catalogs = append([]models.Catalog(nil), p.Catalogs...)
		cp.EnabledCatalogs = make(map[string]bool, len(p.EnabledCatalogs))
		for k, v := range p.EnabledCatalogs {
			cp.EnabledCatalogs[k] = v
		}
		out.Providers[i] = cp
	}
	return out
}

// Provider returns the installed provider with the given id, or nil.
func (s *Settings) Provider(id string) *Provider {
	for i := range s.Providers {
		if s.Providers[i].ID == id {
			return &s.Providers[i]
		}
	}
	return nil
}

// Store persists the configuration. Implementations must make saved state
// visible atomically to subsequent loads.
type Store interface {
	Load() (*Settings, error)
	Save(*Settings) error
}
