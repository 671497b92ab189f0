// Package services wires the aggregation core's components into a single
// container handed to the HTTP layer.
package services

import (
	"mediadeck/internal/addon"
	"mediadeck/internal/aggregate"
	"mediadeck/internal/cache"
	"mediadeck/internal/config"
	"mediadeck/internal/tmdb"
	"mediadeck/pkg/logger"
)

// Container holds every service the handlers depend on.
type Container struct {
	Store     config.Store
	Installer *config.Installer
	Addons    *addon.Client
	TMDB      *tmdb.Client
	Results   *cache.ResultCache
	Catalog   *aggregate.CatalogAggregator
	Details   *aggregate.MetadataResolver
	Seasons   *aggregate.SeasonEpisodeResolver
	Streams   *aggregate.StreamResolver
	Logger    logger.Logger
}

// New builds the full service graph over the given store.
func New(store config.Store, persister cache.Persister, log logger.Logger) *Container {
	addons := addon.NewClient(log)
	tmdbClient := tmdb.NewClient("", log)
	results := cache.NewResultCache(persister, log)
	results.Warm(cache.HomeQuery)

	return &Container{
		Store:     store,
		Installer: config.NewInstaller(store, addons, log),
		Addons:    addons,
		TMDB:      tmdbClient,
		Results:   results,
		Catalog:   aggregate.NewCatalogAggregator(store, addons, tmdbClient, results, log),
		Details:   aggregate.NewMetadataResolver(store, addons, results, log),
		Seasons:   aggregate.NewSeasonEpisodeResolver(store, addons, log),
		Streams:   aggregate.NewStreamResolver(store, addons, tmdbClient, log),
		Logger:    log,
	}
}
