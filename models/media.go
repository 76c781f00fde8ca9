package models

import "strconv"

// MediaKind discriminates movie-shaped from series-shaped catalog records.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// MediaItem is a single catalog record for either a movie or a TV series.
// The kind is resolved once at ingestion; the accessors below tolerate both
// field sets so callers never branch on the shape themselves.
type MediaItem struct {
	ID           int       `json:"id"`
	Kind         MediaKind `json:"media_kind,omitempty"`
	Title        string    `json:"title,omitempty"` // movies
	Name         string    `json:"name,omitempty"`  // series
	Overview     string    `json:"overview,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`   // movies
	FirstAirDate string    `json:"first_air_date,omitempty"` // series
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
	GenreNames   []string  `json:"genre_names,omitempty"`

	// Only present on detail responses.
	Runtime        int   `json:"runtime,omitempty"`          // movies, minutes
	EpisodeRunTime []int `json:"episode_run_time,omitempty"` // series, minutes
}

// DisplayTitle returns the movie title or the series name, whichever is set.
func (m MediaItem) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// ReleaseDateString returns the release date for movies or the first air date
// for series, as the catalog's YYYY-MM-DD string.
func (m MediaItem) ReleaseDateString() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// ReleaseYear returns the four-digit year of the release or first air date,
// or 0 when the date is absent or malformed.
func (m MediaItem) ReleaseYear() int {
	date := m.ReleaseDateString()
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// RuntimeMinutes returns the movie runtime or the first episode runtime for
// series, or 0 when unknown.
func (m MediaItem) RuntimeMinutes() int {
	if m.Runtime > 0 {
		return m.Runtime
	}
	if len(m.EpisodeRunTime) > 0 {
		return m.EpisodeRunTime[0]
	}
	return 0
}

// CastMember is one entry of a title's cast list.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

// CrewMember is one entry of a title's crew list.
type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job,omitempty"`
	Department  string `json:"department,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Credits holds the cast and crew of a single title. The zero value with
// initialised slices doubles as the degraded default when the catalog call
// fails.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// EmptyCredits returns the degraded credits default with non-nil slices.
func EmptyCredits() Credits {
	return Credits{Cast: []CastMember{}, Crew: []CrewMember{}}
}

// Video is a single promotional video entry attached to a title.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official,omitempty"`
}

// Playable reports whether the video renders in the detail view: a YouTube
// trailer or teaser.
func (v Video) Playable() bool {
	return v.Site == "YouTube" && (v.Type == "Trailer" || v.Type == "Teaser")
}

// DetailBundle aggregates everything the detail view renders for one title.
// Credits and Trailers are best-effort and degrade to empty on fetch failure.
type DetailBundle struct {
	Item     MediaItem `json:"item"`
	Credits  Credits   `json:"credits"`
	Trailers []Video   `json:"trailers"`
}
