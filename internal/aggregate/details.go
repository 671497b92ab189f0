package aggregate

import (
	"context"
	"fmt"
	"sort"

	"mediadeck/internal/addon"
	"mediadeck/internal/cache"
	"mediadeck/internal/config"
	"mediadeck/internal/constants"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
	"mediadeck/pkg/logger"
)

// MetadataResolver builds the detail record for a single content item by
// querying addons in priority order, keeping the best partial record and
// stopping early once a complete one is found.
type MetadataResolver struct {
	store   config.Store
	addons  *addon.Client
	results *cache.ResultCache
	logger  logger.Logger
}

// NewMetadataResolver wires a MetadataResolver.
func NewMetadataResolver(store config.Store, addons *addon.Client, results *cache.ResultCache,
	log logger.Logger) *MetadataResolver {
	return &MetadataResolver{store: store, addons: addons, results: results, logger: log}
}

type resolvedMeta struct {
	record     *models.ContentRecord
	providerID string
}

// Resolve returns the detail record for the item together with the id of the
// addon that supplied it. preferredProvider, when set, is queried first,
// typically the addon that surfaced the item in a catalog row. The record is
// flagged partial when no addon supplied a complete one.
func (r *MetadataResolver) Resolve(ctx context.Context, contentType, id, preferredProvider string) (*models.ContentRecord, string, error) {
	settings, err := r.store.Load()
	if err != nil {
		return nil, "", err
	}

	providers := orderProviders(settings, contentType, preferredProvider)

	tasks := make([]func(context.Context) (resolvedMeta, error), 0, len(providers))
	for _, p := range providers {
		tasks = append(tasks, func(taskCtx context.Context) (resolvedMeta, error) {
			meta, err := r.addons.Meta(taskCtx, p.BaseURL, contentType, id)
			if err != nil {
				return resolvedMeta{}, err
			}
			return resolvedMeta{record: recordFromMeta(meta, contentType, id), providerID: p.ID}, nil
		})
	}

	best, found, complete := raceToFirstComplete(ctx, constants.ProviderTimeout, r.logger, tasks,
		func(v resolvedMeta) bool { return v.record.Complete() },
		func(candidate, current resolvedMeta) bool { return dominates(candidate.record, current.record) },
	)

	if found {
		best.record.Partial = !complete
		if complete {
			r.logger.Debugf("[MetadataResolver] complete record for %s from %s, remaining addons skipped",
				id, best.providerID)
		}
		return best.record, best.providerID, nil
	}

	// No addon returned a usable record; fall back to the weaker basic
	// record extractable from the user's cached catalog listings.
	if basic := r.basicFromCatalogs(settings, contentType, id); basic != nil {
		r.logger.Debugf("[MetadataResolver] basic catalog record for %s", id)
		return basic, "", nil
	}

	return nil, "", apperrors.NewEmptyResult(fmt.Sprintf("no metadata available for %s", id))
}

// orderProviders returns the meta-capable addons with the preferred one, if
// any, hoisted to the front; the rest keep installation order.
func orderProviders(settings *config.Settings, contentType, preferredProvider string) []config.Provider {
	out := make([]config.Provider, 0, len(settings.Providers))
	for i := range settings.Providers {
		p := settings.Providers[i]
		if !p.SupportsResource("meta", contentType) {
			continue
		}
		if p.ID == preferredProvider {
			out = append([]config.Provider{p}, out...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// dominates reports whether candidate strictly improves on current by
// supplying a field current lacks.
func dominates(candidate, current *models.ContentRecord) bool {
	if current == nil {
		return true
	}
	if candidate == nil {
		return false
	}
	return (current.Description == "" && candidate.Description != "") ||
		(current.Background == "" && candidate.Background != "") ||
		(current.Poster == "" && candidate.Poster != "")
}

func recordFromMeta(meta *models.Meta, contentType, id string) *models.ContentRecord {
	record := &models.ContentRecord{
		ID:            id,
		Type:          contentType,
		Title:         meta.Name,
		Poster:        meta.Poster,
		Background:    meta.Background,
		Logo:          meta.Logo,
		Description:   meta.Description,
		ReleaseInfo:   meta.ReleaseInfo,
		Runtime:       meta.Runtime,
		Rating:        meta.IMDBRating,
		Genres:        meta.Genres,
		Cast:          meta.Cast,
		Director:      meta.Director,
		Certification: meta.Certification,
	}
	if contentType == "series" {
		record.Seasons = seasonsFromVideos(meta.Videos)
	}
	return record
}

// seasonsFromVideos derives the distinct season numbers from an episode
// list, treating entries without a season as season 1.
func seasonsFromVideos(videos []models.Video) []int {
	seen := make(map[int]bool)
	for _, v := range videos {
		season := 1
		if v.Season != nil {
			season = *v.Season
		}
		seen[season] = true
	}

	seasons := make([]int, 0, len(seen))
	for s := range seen {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)
	return seasons
}

func (r *MetadataResolver) basicFromCatalogs(settings *config.Settings, contentType, id string) *models.ContentRecord {
	for _, row := range r.results.Snapshot(config.Signature(settings)) {
		for _, item := range row.Items {
			if item.ID != id {
				continue
			}
			return &models.ContentRecord{
				ID:      id,
				Type:    contentType,
				Title:   item.Name,
				Poster:  item.Poster,
				Partial: true,
			}
		}
	}
	return nil
}
