package models

import "time"

// FavoriteEntry is a saved media item plus the moment it was favorited.
// The catalog fields stay inline in the persisted JSON so the record keeps
// the legacy `movieFavorites` layout.
type FavoriteEntry struct {
	MediaItem
	AddedAt time.Time `json:"addedAt"`
}

// PlaylistEntry is a media item inside a playlist with its add timestamp.
type PlaylistEntry struct {
	MediaItem
	AddedAt time.Time `json:"addedAt"`
}

// Playlist is a named, user-created ordered collection of media items.
// Movies are unique by media id within one playlist.
type Playlist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Movies      []PlaylistEntry `json:"movies"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Contains reports whether the playlist holds the given media id.
func (p Playlist) Contains(movieID int) bool {
	for _, entry := range p.Movies {
		if entry.ID == movieID {
			return true
		}
	}
	return false
}

// PlaylistUpdate carries a partial playlist edit. Nil fields are left
// untouched so "not set" is distinguishable from an explicit empty value.
type PlaylistUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Rating is a user's 1..10 score for a single media item.
type Rating struct {
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

// RatedMovie pairs a media id with its rating for listings.
type RatedMovie struct {
	MovieID int       `json:"movieId"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

// PlaylistStats summarises the playlist and rating collections.
// AverageRating is rounded to one decimal and 0 when nothing is rated.
type PlaylistStats struct {
	TotalPlaylists         int     `json:"totalPlaylists"`
	TotalMoviesInPlaylists int     `json:"totalMoviesInPlaylists"`
	TotalRatings           int     `json:"totalRatings"`
	AverageRating          float64 `json:"averageRating"`
}
