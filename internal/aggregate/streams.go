package aggregate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mediadeck/internal/addon"
	"mediadeck/internal/config"
	"mediadeck/internal/constants"
	apperrors "mediadeck/internal/errors"
	"mediadeck/internal/extract"
	"mediadeck/internal/models"
	"mediadeck/internal/tmdb"
	"mediadeck/pkg/logger"
)

// StreamResolver produces the ranked stream list for one content item by
// fanning out to every stream-capable addon, translating metadata-provider
// identifiers to the addon-native scheme first when necessary.
type StreamResolver struct {
	store  config.Store
	addons *addon.Client
	tmdb   *tmdb.Client
	logger logger.Logger
}

// NewStreamResolver wires a StreamResolver.
func NewStreamResolver(store config.Store, addons *addon.Client, tmdbClient *tmdb.Client,
	log logger.Logger) *StreamResolver {
	return &StreamResolver{store: store, addons: addons, tmdb: tmdbClient, logger: log}
}

var resolutionDigits = regexp.MustCompile(`\d{3,4}`)

// Resolve returns the merged, quality-ranked stream candidates. season and
// episode are zero for movies.
func (r *StreamResolver) Resolve(ctx context.Context, contentType, id string, season, episode int) ([]models.StreamCandidate, error) {
	settings, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	queryID, translationNote := r.translateID(ctx, settings, contentType, id)

	var eligible []config.Provider
	for i := range settings.Providers {
		if settings.Providers[i].SupportsResource("stream", contentType) {
			eligible = append(eligible, settings.Providers[i])
		}
	}

	var candidates []models.StreamCandidate
	if queryID != "" && len(eligible) > 0 {
		composite := queryID
		if contentType == "series" && season > 0 && episode > 0 {
			composite = fmt.Sprintf("%s:%d:%d", queryID, season, episode)
		}

		tasks := make([]func(context.Context) ([]models.StreamCandidate, error), 0, len(eligible))
		for _, p := range eligible {
			tasks = append(tasks, func(taskCtx context.Context) ([]models.StreamCandidate, error) {
				streams, err := r.addons.Streams(taskCtx, p.BaseURL, contentType, composite)
				if err != nil {
					return nil, err
				}
				return candidatesFromStreams(p, streams), nil
			})
		}

		for _, list := range fanOutCollectAll(ctx, constants.FanOutConcurrency, constants.ProviderTimeout, r.logger, tasks) {
			candidates = append(candidates, list...)
		}
	}

	if len(candidates) == 0 {
		if translationNote != "" {
			return nil, apperrors.NewTranslation(translationNote, nil)
		}
		if len(eligible) == 0 {
			return nil, apperrors.NewNotConfigured(
				"no streaming-capable addons installed; install a stream addon to play content")
		}
		return nil, apperrors.NewEmptyResult("no streaming sources found")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return qualityScore(candidates[i]) > qualityScore(candidates[j])
	})

	r.logger.Infof("[StreamResolver] resolved %d candidates for %s", len(candidates), id)
	return candidates, nil
}

// translateID maps a metadata-provider-namespaced identifier to the
// addon-native IMDb scheme. On failure it returns an empty query identifier
// and the note to surface if the whole resolution ends up empty.
func (r *StreamResolver) translateID(ctx context.Context, settings *config.Settings, contentType, id string) (string, string) {
	if !strings.HasPrefix(id, "tmdb:") {
		return id, ""
	}

	tmdbID := strings.TrimPrefix(id, "tmdb:")
	if !settings.MetadataProvider.Active() {
		return "", "TMDB API key missing. Cannot look up IMDb ID."
	}

	r.tmdb.SetAPIKey(settings.MetadataProvider.APIKey)
	imdbID, err := r.tmdb.IMDBID(ctx, contentType, tmdbID)
	if err != nil {
		r.logger.Warnf("[StreamResolver] identifier translation failed for %s: %v", id, err)
		return "", fmt.Sprintf("could not resolve identifier %s", id)
	}
	return imdbID, ""
}

// candidatesFromStreams maps one addon's raw streams to enriched candidates,
// tagging each with its source and running attribute extraction.
func candidatesFromStreams(p config.Provider, streams []models.Stream) []models.StreamCandidate {
	candidates := make([]models.StreamCandidate, 0, len(streams))
	for _, s := range streams {
		playURL := s.URL
		externalURL := s.ExternalURL
		if s.External && externalURL == "" {
			externalURL = s.URL
		}
		if externalURL != "" {
			// An external candidate hands off to an external agent;
			// the playback URL is not authoritative for it.
			playURL = ""
		}
		if playURL == "" && externalURL == "" {
			continue
		}

		in := extract.Input{
			Description:  s.Description,
			Title:        s.Title,
			Name:         s.Name,
			ProviderName: p.Name,
		}
		if s.BehaviorHints != nil {
			in.Filename = s.BehaviorHints.Filename
			in.SizeBytes = s.BehaviorHints.VideoSize
		}

		label := s.Name
		if label == "" {
			label = s.Title
		}

		candidates = append(candidates, models.StreamCandidate{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			Label:        label,
			Description:  s.Description,
			URL:          playURL,
			ExternalURL:  externalURL,
			Attributes:   extract.Extract(in),
		})
	}
	return candidates
}

// qualityScore ranks a candidate by the numeric part of its resolution,
// falling back to the coarse HD/SD quality words in its label.
func qualityScore(c models.StreamCandidate) int {
	if m := resolutionDigits.FindString(c.Attributes.Resolution); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}

	label := strings.ToUpper(c.Label + " " + c.Description)
	switch {
	case strings.Contains(label, "HD"):
		return 720
	case strings.Contains(label, "SD"):
		return 480
	}
	return 0
}
