package config

import (
	"fmt"
	"sort"
	"strings"
)

// Signature derives a stable fingerprint of the configuration state that can
// influence an aggregated result. It is order-independent over providers and
// over each provider's enabled-catalog set, and deliberately encodes only the
// presence of the metadata-provider key, never its value, so signatures are
// safe to log and compare.
func Signature(s *Settings) string {
	fragments := make([]string, 0, len(s.Providers)+1)
	for i := range s.Providers {
		p := &s.Providers[i]
		fragments = append(fragments, p.ID+":"+strings.Join(p.EnabledCatalogKeys(), ","))
	}
	sort.Strings(fragments)

	meta := fmt.Sprintf("tmdb:%t:%t", s.MetadataProvider.APIKey != "", s.MetadataProvider.Enabled)
	return strings.Join(append(fragments, meta), "|")
}
