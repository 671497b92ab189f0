package aggregate

import (
	"context"
	"sort"
	"strings"
	"time"

	"mediadeck/internal/addon"
	"mediadeck/internal/cache"
	"mediadeck/internal/config"
	"mediadeck/internal/constants"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
	"mediadeck/internal/tmdb"
	"mediadeck/pkg/logger"
)

// CatalogAggregator fans a listing or search request out to every eligible
// upstream, merges and ranks the partial results and writes them through the
// result cache keyed by the configuration signature that produced them.
type CatalogAggregator struct {
	store   config.Store
	addons  *addon.Client
	tmdb    *tmdb.Client
	results *cache.ResultCache
	logger  logger.Logger
}

// NewCatalogAggregator wires a CatalogAggregator.
func NewCatalogAggregator(store config.Store, addons *addon.Client, tmdbClient *tmdb.Client,
	results *cache.ResultCache, log logger.Logger) *CatalogAggregator {
	return &CatalogAggregator{
		store:   store,
		addons:  addons,
		tmdb:    tmdbClient,
		results: results,
		logger:  log,
	}
}

// Home aggregates the default catalog listing.
func (a *CatalogAggregator) Home(ctx context.Context) ([]models.AggregatedRow, error) {
	return a.aggregate(ctx, cache.HomeQuery, "")
}

// Search aggregates a search listing across every eligible upstream.
func (a *CatalogAggregator) Search(ctx context.Context, query string) ([]models.AggregatedRow, error) {
	return a.aggregate(ctx, cache.SearchQuery(query), query)
}

func (a *CatalogAggregator) aggregate(ctx context.Context, kind cache.QueryKind, query string) ([]models.AggregatedRow, error) {
	settings, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	signature := config.Signature(settings)

	if rows, ok := a.results.Get(kind, signature); ok {
		a.logger.Debugf("[CatalogAggregator] cache hit for %s, skipping fan-out", kind)
		return rows, nil
	}

	metadataMode := settings.MetadataProvider.Active()

	var rows []models.AggregatedRow
	if metadataMode {
		a.tmdb.SetAPIKey(settings.MetadataProvider.APIKey)
		rows = a.metadataProviderRows(ctx, query)
	} else {
		rows = a.addonRows(ctx, settings, query)
	}

	if len(rows) == 0 {
		if !metadataMode && !hasEnabledCatalogs(settings) {
			return nil, apperrors.NewNotConfigured(
				"no catalogs configured; install an addon or enable the metadata provider")
		}
		return nil, apperrors.NewEmptyResult("no catalog results from any configured source")
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Title < rows[j].Title })
	a.results.Put(kind, rows, signature)
	a.logger.Infof("[CatalogAggregator] aggregated %d rows for %s", len(rows), kind)

	if metadataMode && query == "" {
		go a.enhanceImages(kind, rows, signature)
	}
	return rows, nil
}

// metadataProviderRows issues one request per predefined category, in parallel.
func (a *CatalogAggregator) metadataProviderRows(ctx context.Context, query string) []models.AggregatedRow {
	if query != "" {
		items, err := a.tmdb.SearchMulti(ctx, query)
		if err != nil || len(items) == 0 {
			if err != nil {
				a.logger.Warnf("[CatalogAggregator] metadata provider search failed: %v", err)
			}
			return nil
		}
		return []models.AggregatedRow{{
			ID:     "tmdb:search",
			Title:  "Search Results",
			Items:  dedupeItems(items),
			Origin: models.OriginTMDB,
		}}
	}

	categories := tmdb.Categories()
	tasks := make([]func(context.Context) (models.AggregatedRow, error), 0, len(categories))
	for _, cat := range categories {
		tasks = append(tasks, func(taskCtx context.Context) (models.AggregatedRow, error) {
			items, err := a.tmdb.List(taskCtx, cat)
			if err != nil {
				return models.AggregatedRow{}, err
			}
			return models.AggregatedRow{
				ID:     "tmdb:" + cat.Key,
				Title:  cat.Title,
				Items:  dedupeItems(items),
				Origin: models.OriginTMDB,
			}, nil
		})
	}

	rows := fanOutCollectAll(ctx, constants.FanOutConcurrency, constants.ProviderTimeout, a.logger, tasks)
	return dropEmptyRows(rows)
}

// addonRows issues one request per enabled catalog of every installed addon,
// in parallel. For searches all addon results merge into a single
// deduplicated row.
func (a *CatalogAggregator) addonRows(ctx context.Context, settings *config.Settings, query string) []models.AggregatedRow {
	var tasks []func(context.Context) (models.AggregatedRow, error)

	for i := range settings.Providers {
		p := settings.Providers[i]
		for _, cat := range p.Catalogs {
			if !p.CatalogEnabled(cat.Type, cat.ID) {
				continue
			}
			tasks = append(tasks, func(taskCtx context.Context) (models.AggregatedRow, error) {
				var metas []models.Meta
				var err error
				if query != "" {
					metas, err = a.addons.Search(taskCtx, p.BaseURL, cat.Type, cat.ID, query)
				} else {
					metas, err = a.addons.Catalog(taskCtx, p.BaseURL, cat.Type, cat.ID)
				}
				if err != nil {
					return models.AggregatedRow{}, err
				}
				return models.AggregatedRow{
					ID:     p.ID + "/" + config.CatalogKey(cat.Type, cat.ID),
					Title:  rowTitle(&p, cat),
					Items:  itemsFromMetas(metas, cat.Type),
					Origin: models.OriginAddon,
				}, nil
			})
		}
	}

	rows := dropEmptyRows(fanOutCollectAll(ctx, constants.FanOutConcurrency, constants.ProviderTimeout, a.logger, tasks))

	if query != "" {
		return mergeSearchRows(rows)
	}
	return rows
}

// rowTitle synthesizes "{catalog display name} • {addon name}". When an
// addon declares the same catalog name for more than one content type, a
// type suffix disambiguates the rows.
func rowTitle(p *config.Provider, cat models.Catalog) string {
	display := cat.Name
	if display == "" {
		display = cat.ID
	}

	sameName := 0
	for _, other := range p.Catalogs {
		if strings.EqualFold(other.Name, cat.Name) {
			sameName++
		}
	}
	if sameName > 1 && !nameSuggestsType(display) {
		display += typeSuffix(cat.Type)
	}

	return display + " • " + p.Name
}

func nameSuggestsType(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range []string{"movie", "series", "show", "tv"} {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func typeSuffix(contentType string) string {
	if contentType == "series" {
		return " TV Shows"
	}
	return " Movies"
}

// itemsFromMetas maps catalog entries to row items, dropping entries without
// a usable image reference and deduplicating by logical ID, first seen wins.
func itemsFromMetas(metas []models.Meta, contentType string) []models.MediaItem {
	seen := make(map[string]bool, len(metas))
	items := make([]models.MediaItem, 0, len(metas))
	for _, m := range metas {
		if m.ID == "" || m.Poster == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true

		itemType := m.Type
		if itemType == "" {
			itemType = contentType
		}
		items = append(items, models.MediaItem{
			ID:     m.ID,
			Name:   m.Name,
			Poster: m.Poster,
			Type:   itemType,
		})
	}
	return items
}

func dedupeItems(items []models.MediaItem) []models.MediaItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

func dropEmptyRows(rows []models.AggregatedRow) []models.AggregatedRow {
	out := rows[:0]
	for _, row := range rows {
		if len(row.Items) > 0 {
			out = append(out, row)
		}
	}
	return out
}

// mergeSearchRows folds all per-addon search rows into a single deduplicated
// row so the same logical item surfaced by several addons appears once.
func mergeSearchRows(rows []models.AggregatedRow) []models.AggregatedRow {
	if len(rows) == 0 {
		return nil
	}

	var items []models.MediaItem
	for _, row := range rows {
		items = append(items, row.Items...)
	}
	merged := models.AggregatedRow{
		ID:     "search",
		Title:  "Search Results",
		Items:  dedupeItems(items),
		Origin: models.OriginAddon,
	}
	if len(merged.Items) == 0 {
		return nil
	}
	return []models.AggregatedRow{merged}
}

func hasEnabledCatalogs(settings *config.Settings) bool {
	for i := range settings.Providers {
		if len(settings.Providers[i].EnabledCatalogKeys()) > 0 {
			return true
		}
	}
	return false
}

// enhanceImages is the detached background continuation that upgrades
// metadata-provider items to their best backdrop in small batches, writing
// the cache after each batch so the presentation layer sees progressive
// improvement. A completion that lands after the configuration changed is
// discarded by re-checking the signature before each commit.
func (a *CatalogAggregator) enhanceImages(kind cache.QueryKind, rows []models.AggregatedRow, signature string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("[CatalogAggregator] image enhancement panic recovered: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*constants.RequestTimeout)
	defer cancel()

	enhanced := copyRows(rows)

	type itemRef struct {
		row, idx int
	}
	var refs []itemRef
	for ri := range enhanced {
		for ii := range enhanced[ri].Items {
			refs = append(refs, itemRef{row: ri, idx: ii})
		}
	}

	for start := 0; start < len(refs); start += constants.EnhanceBatchSize {
		end := min(start+constants.EnhanceBatchSize, len(refs))
		batch := refs[start:end]

		type upgrade struct {
			ref itemRef
			url string
		}
		tasks := make([]func(context.Context) (upgrade, error), 0, len(batch))
		for _, ref := range batch {
			item := enhanced[ref.row].Items[ref.idx]
			tasks = append(tasks, func(taskCtx context.Context) (upgrade, error) {
				tmdbID := strings.TrimPrefix(item.ID, "tmdb:")
				url, err := a.tmdb.BestBackdrop(taskCtx, item.Type, tmdbID)
				if err != nil {
					return upgrade{}, err
				}
				return upgrade{ref: ref, url: url}, nil
			})
		}

		for _, up := range fanOutCollectAll(ctx, constants.EnhanceBatchSize, constants.ProviderTimeout, a.logger, tasks) {
			enhanced[up.ref.row].Items[up.ref.idx].Poster = up.url
		}

		settings, err := a.store.Load()
		if err != nil || config.Signature(settings) != signature {
			a.logger.Debugf("[CatalogAggregator] configuration changed mid-flight, discarding enhancement")
			return
		}
		a.results.Put(kind, copyRows(enhanced), signature)

		if end < len(refs) {
			time.Sleep(constants.EnhanceBatchDelay)
		}
	}
}

func copyRows(rows []models.AggregatedRow) []models.AggregatedRow {
	out := make([]models.AggregatedRow, len(rows))
	for i, row := range rows {
		cp := row
		cp.Items = append([]models.MediaItem(nil), row.Items...)
		out[i] = cp
	}
	return out
}
