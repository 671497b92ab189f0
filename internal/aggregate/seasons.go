package aggregate

import (
	"context"
	"sort"

	"mediadeck/internal/addon"
	"mediadeck/internal/config"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/models"
	"mediadeck/pkg/logger"
)

// SeasonEpisodeResolver discovers the season set and per-season episode list
// of a series from the addon that supplied its winning metadata record.
type SeasonEpisodeResolver struct {
	store  config.Store
	addons *addon.Client
	logger logger.Logger
}

// NewSeasonEpisodeResolver wires a SeasonEpisodeResolver.
func NewSeasonEpisodeResolver(store config.Store, addons *addon.Client, log logger.Logger) *SeasonEpisodeResolver {
	return &SeasonEpisodeResolver{store: store, addons: addons, logger: log}
}

// ListSeasons returns the ordered distinct season numbers of the series.
// Season discovery never fails: any error or empty result defaults to {1},
// since most addons serve at least a flat episode list under season 1.
func (r *SeasonEpisodeResolver) ListSeasons(ctx context.Context, providerID, contentType, id string) []int {
	provider := r.provider(providerID)
	if provider == nil {
		return []int{1}
	}

	meta, err := r.addons.Meta(ctx, provider.BaseURL, contentType, id)
	if err != nil {
		r.logger.Debugf("[SeasonResolver] season discovery failed for %s, defaulting to season 1: %v", id, err)
		return []int{1}
	}

	seasons := seasonsFromVideos(meta.Videos)
	if len(seasons) == 0 {
		return []int{1}
	}
	return seasons
}

// ListEpisodes returns the ordered episode list of one season. The addon's
// per-season endpoint is preferred; its full video list, filtered to the
// requested season, serves as fallback for older addon schemas.
func (r *SeasonEpisodeResolver) ListEpisodes(ctx context.Context, providerID, contentType, id string, season int) ([]models.EpisodeRecord, error) {
	provider := r.provider(providerID)
	if provider == nil {
		return nil, apperrors.NewEmptyResult("no episode information for this season")
	}

	meta, err := r.addons.SeasonMeta(ctx, provider.BaseURL, contentType, id, season)
	if err != nil {
		r.logger.Debugf("[SeasonResolver] season endpoint failed for %s, falling back to full meta: %v", id, err)
		meta, err = r.addons.Meta(ctx, provider.BaseURL, contentType, id)
		if err != nil {
			return nil, apperrors.NewEmptyResult("no episode information for this season")
		}
	}

	videos := meta.Episodes
	if len(videos) == 0 {
		videos = meta.Videos
	}

	episodes := episodesForSeason(videos, season)
	if len(episodes) == 0 {
		return nil, apperrors.NewEmptyResult("no episode information for this season")
	}
	return episodes, nil
}

func (r *SeasonEpisodeResolver) provider(providerID string) *config.Provider {
	settings, err := r.store.Load()
	if err != nil {
		return nil
	}
	return settings.Provider(providerID)
}

// episodesForSeason filters a video list to the requested season, treating
// videos with an absent season as season 1 for backward compatibility.
func episodesForSeason(videos []models.Video, season int) []models.EpisodeRecord {
	episodes := make([]models.EpisodeRecord, 0, len(videos))
	for _, v := range videos {
		videoSeason := 1
		if v.Season != nil {
			videoSeason = *v.Season
		}
		if videoSeason != season {
			continue
		}

		title := v.Title
		if title == "" {
			title = v.Name
		}
		episodes = append(episodes, models.EpisodeRecord{
			ID:        v.ID,
			Season:    videoSeason,
			Episode:   v.Episode,
			Title:     title,
			Overview:  v.Overview,
			Thumbnail: v.Thumbnail,
			Runtime:   v.Runtime,
			Released:  v.Released,
		})
	}

	sort.SliceStable(episodes, func(i, j int) bool { return episodes[i].Episode < episodes[j].Episode })
	return episodes
}
