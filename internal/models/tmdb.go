package models

// TMDBListResponse is a paged category listing or search response.
type TMDBListResponse struct {
	Page    int            `json:"page"`
	Results []TMDBListItem `json:"results"`
}

// TMDBListItem is one entry of a TMDB listing. Movies carry title and
// release_date, series carry name and first_air_date.
type TMDBListItem struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	VoteCount    int64   `json:"vote_count,omitempty"`
}

// TMDBImagesResponse is the images sub-endpoint response.
type TMDBImagesResponse struct {
	Backdrops []TMDBImage `json:"backdrops"`
}

// TMDBImage is a single image asset with its voting stats.
type TMDBImage struct {
	FilePath    string  `json:"file_path"`
	ISO639      string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// TMDBExternalIDs is the external-IDs sub-endpoint response, used solely for
// identifier translation.
type TMDBExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}
