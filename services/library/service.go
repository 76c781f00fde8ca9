// Package library maintains the per-profile collections: favorite titles,
// named playlists and movie ratings. Every mutation is written through to the
// persistence port in the same call; reads are served from memory hydrated
// once at session start.
package library

import (
	"errors"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mozillazg/go-unidecode"

	"cinescope/internal/storage"
	"cinescope/models"
)

var (
	// ErrNoSession signals a mutation attempted without an authenticated
	// profile.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidRating signals a rating outside the 1..10 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
	// ErrPlaylistNotFound signals an unknown playlist id.
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// Session reports the active profile. The collections are gated on its
// presence: no session means empty reads and refused mutations.
type Session interface {
	Current() *models.User
}

// Service owns the in-memory collections and their persisted records.
type Service struct {
	store   storage.Store
	session Session
	now     func() time.Time

	mu        sync.Mutex
	hydrated  bool
	favorites []models.FavoriteEntry
	playlists []models.Playlist
	ratings   map[string]models.Rating
}

// NewService builds a library over the given persistence port. Call
// BeginSession once a profile is active to hydrate the collections.
func NewService(store storage.Store, session Session) *Service {
	return &Service{
		store:   store,
		session: session,
		now:     time.Now,
		ratings: make(map[string]models.Rating),
	}
}

// SetNowFunc overrides the clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// BeginSession hydrates the collections from their persisted records.
// A corrupt record is logged, discarded and treated as empty; it gets
// overwritten by the next write-through.
func (s *Service) BeginSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = nil
	s.playlists = nil
	s.ratings = make(map[string]models.Rating)

	loadRecord(s.store, storage.KeyFavorites, &s.favorites)
	loadRecord(s.store, storage.KeyPlaylists, &s.playlists)
	loadRecord(s.store, storage.KeyRatings, &s.ratings)
	if s.ratings == nil {
		s.ratings = make(map[string]models.Rating)
	}
	s.hydrated = true
}

// EndSession drops the in-memory collections. Persisted records stay on disk
// so the profile's next session rehydrates them.
func (s *Service) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = nil
	s.playlists = nil
	s.ratings = make(map[string]models.Rating)
	s.hydrated = false
}

func loadRecord(store storage.Store, key string, out any) {
	data, err := store.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return
	}
	if err != nil {
		log.Printf("[library] read %s: %v", key, err)
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[library] discarding corrupt %s record: %v", key, err)
	}
}

func (s *Service) persist(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[library] marshal %s: %v", key, err)
		return
	}
	if err := s.store.Set(key, data); err != nil {
		log.Printf("[library] persist %s: %v", key, err)
	}
}

func (s *Service) authenticated() bool {
	return s.session.Current() != nil
}

// ---- Favorites ----

// IsFavorite reports membership for id. Always false without a session.
func (s *Service) IsFavorite(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return false
	}
	for _, fav := range s.favorites {
		if fav.ID == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds the item to the favorites, or removes it when already
// present. It reports false without mutating anything when no session is
// active, so the caller can surface a login prompt.
func (s *Service) ToggleFavorite(item models.MediaItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return false
	}

	for i, fav := range s.favorites {
		if fav.ID == item.ID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			s.persist(storage.KeyFavorites, s.favorites)
			return true
		}
	}

	s.favorites = append(s.favorites, models.FavoriteEntry{
		MediaItem: item,
		AddedAt:   s.now(),
	})
	s.persist(storage.KeyFavorites, s.favorites)
	return true
}

// Favorites returns a copy of the favorites collection, oldest first. Empty
// without a session.
func (s *Service) Favorites() []models.FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return []models.FavoriteEntry{}
	}
	out := make([]models.FavoriteEntry, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// FavoritesCount reports the number of favorites, 0 without a session.
func (s *Service) FavoritesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return 0
	}
	return len(s.favorites)
}

// ClearFavorites empties the collection and removes its persisted record.
// Reports false without a session.
func (s *Service) ClearFavorites() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return false
	}
	s.favorites = nil
	if err := s.store.Delete(storage.KeyFavorites); err != nil {
		log.Printf("[library] clear favorites: %v", err)
	}
	return true
}

// ---- Playlists ----

// CreatePlaylist creates an empty playlist with a creation-timestamp id.
// Duplicate names are allowed.
func (s *Service) CreatePlaylist(name, description string) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return nil, ErrNoSession
	}

	now := s.now()
	playlist := models.Playlist{
		ID:          s.nextPlaylistIDLocked(now),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Movies:      []models.PlaylistEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.playlists = append(s.playlists, playlist)
	s.persist(storage.KeyPlaylists, s.playlists)

	created := playlist
	return &created, nil
}

// nextPlaylistIDLocked derives the id from the creation millisecond and bumps
// it until unique, so two playlists created in the same tick stay distinct.
func (s *Service) nextPlaylistIDLocked(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if s.findPlaylistLocked(id) == nil {
			return id
		}
		ms++
	}
}

func (s *Service) findPlaylistLocked(id string) *models.Playlist {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			return &s.playlists[i]
		}
	}
	return nil
}

// DeletePlaylist removes the playlist unconditionally. Unknown ids are a
// no-op.
func (s *Service) DeletePlaylist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return ErrNoSession
	}

	kept := s.playlists[:0]
	for _, p := range s.playlists {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.playlists = kept
	s.persist(storage.KeyPlaylists, s.playlists)
	return nil
}

// UpdatePlaylist applies a partial edit and touches UpdatedAt.
func (s *Service) UpdatePlaylist(id string, update models.PlaylistUpdate) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return nil, ErrNoSession
	}

	playlist := s.findPlaylistLocked(id)
	if playlist == nil {
		return nil, ErrPlaylistNotFound
	}

	if update.Name != nil {
		playlist.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		playlist.Description = strings.TrimSpace(*update.Description)
	}
	playlist.UpdatedAt = s.now()
	s.persist(storage.KeyPlaylists, s.playlists)

	updated := *playlist
	return &updated, nil
}

// AddToPlaylist appends the item unless the playlist already holds its id;
// the duplicate add is an idempotent no-op that leaves UpdatedAt untouched.
func (s *Service) AddToPlaylist(playlistID string, item models.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return ErrNoSession
	}

	playlist := s.findPlaylistLocked(playlistID)
	if playlist == nil {
		return ErrPlaylistNotFound
	}
	if playlist.Contains(item.ID) {
		return nil
	}

	now := s.now()
	playlist.Movies = append(playlist.Movies, models.PlaylistEntry{
		MediaItem: item,
		AddedAt:   now,
	})
	playlist.UpdatedAt = now
	s.persist(storage.KeyPlaylists, s.playlists)
	return nil
}

// RemoveFromPlaylist filters the movie out and touches UpdatedAt.
func (s *Service) RemoveFromPlaylist(playlistID string, movieID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return ErrNoSession
	}

	playlist := s.findPlaylistLocked(playlistID)
	if playlist == nil {
		return ErrPlaylistNotFound
	}

	kept := playlist.Movies[:0]
	for _, entry := range playlist.Movies {
		if entry.ID != movieID {
			kept = append(kept, entry)
		}
	}
	playlist.Movies = kept
	playlist.UpdatedAt = s.now()
	s.persist(storage.KeyPlaylists, s.playlists)
	return nil
}

// IsInPlaylist reports whether the playlist holds the movie.
func (s *Service) IsInPlaylist(playlistID string, movieID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return false
	}
	playlist := s.findPlaylistLocked(playlistID)
	return playlist != nil && playlist.Contains(movieID)
}

// PlaylistsWithMovie returns the playlists containing the movie.
func (s *Service) PlaylistsWithMovie(movieID int) []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Playlist{}
	if !s.authenticated() {
		return out
	}
	for _, p := range s.playlists {
		if p.Contains(movieID) {
			out = append(out, p)
		}
	}
	return out
}

// Playlists returns a copy of all playlists, creation order.
func (s *Service) Playlists() []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return []models.Playlist{}
	}
	out := make([]models.Playlist, len(s.playlists))
	copy(out, s.playlists)
	return out
}

// SearchPlaylists filters playlists by name, accent- and case-insensitively,
// for the playlist picker's filter box.
func (s *Service) SearchPlaylists(query string) []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Playlist{}
	if !s.authenticated() {
		return out
	}

	needle := foldName(query)
	for _, p := range s.playlists {
		if needle == "" || strings.Contains(foldName(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// ---- Ratings ----

// RateMovie upserts the 1..10 rating for the movie.
func (s *Service) RateMovie(movieID, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return ErrNoSession
	}
	if rating < 1 || rating > 10 {
		return ErrInvalidRating
	}

	s.ratings[strconv.Itoa(movieID)] = models.Rating{
		Rating:  rating,
		RatedAt: s.now(),
	}
	s.persist(storage.KeyRatings, s.ratings)
	return nil
}

// RemoveRating deletes the rating if present; removing an unrated movie is a
// no-op.
func (s *Service) RemoveRating(movieID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return ErrNoSession
	}

	key := strconv.Itoa(movieID)
	if _, ok := s.ratings[key]; !ok {
		return nil
	}
	delete(s.ratings, key)
	s.persist(storage.KeyRatings, s.ratings)
	return nil
}

// UserRating returns the rating for the movie and whether one exists.
func (s *Service) UserRating(movieID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated() {
		return 0, false
	}
	rating, ok := s.ratings[strconv.Itoa(movieID)]
	if !ok {
		return 0, false
	}
	return rating.Rating, true
}

// RatedMovies lists all ratings ordered by movie id.
func (s *Service) RatedMovies() []models.RatedMovie {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.RatedMovie{}
	if !s.authenticated() {
		return out
	}
	for key, rating := range s.ratings {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out = append(out, models.RatedMovie{
			MovieID: id,
			Rating:  rating.Rating,
			RatedAt: rating.RatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out
}

// Stats summarises the playlist and rating collections. AverageRating is
// rounded to one decimal and 0 when nothing is rated.
func (s *Service) Stats() models.PlaylistStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.PlaylistStats{}
	if !s.authenticated() {
		return stats
	}

	stats.TotalPlaylists = len(s.playlists)
	for _, p := range s.playlists {
		stats.TotalMoviesInPlaylists += len(p.Movies)
	}
	stats.TotalRatings = len(s.ratings)
	if stats.TotalRatings > 0 {
		sum := 0
		for _, r := range s.ratings {
			sum += r.Rating
		}
		avg := float64(sum) / float64(stats.TotalRatings)
		stats.AverageRating = math.Round(avg*10) / 10
	}
	return stats
}
