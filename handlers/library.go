package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinescope/models"
	librarysvc "cinescope/services/library"
)

type libraryService interface {
	Favorites() []models.FavoriteEntry
	FavoritesCount() int
	IsFavorite(id int) bool
	ToggleFavorite(item models.MediaItem) bool
	ClearFavorites() bool

	Playlists() []models.Playlist
	SearchPlaylists(query string) []models.Playlist
	CreatePlaylist(name, description string) (*models.Playlist, error)
	UpdatePlaylist(id string, update models.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylist(id string) error
	AddToPlaylist(playlistID string, item models.MediaItem) error
	RemoveFromPlaylist(playlistID string, movieID int) error
	PlaylistsWithMovie(movieID int) []models.Playlist

	RateMovie(movieID, rating int) error
	RemoveRating(movieID int) error
	UserRating(movieID int) (int, bool)
	RatedMovies() []models.RatedMovie
	Stats() models.PlaylistStats
}

var _ libraryService = (*librarysvc.Service)(nil)

// LibraryHandler exposes the per-profile favorites, playlists and ratings.
// All routes require a bearer token.
type LibraryHandler struct {
	Service libraryService
	Tokens  *TokenIssuer
}

func NewLibraryHandler(service libraryService, tokens *TokenIssuer) *LibraryHandler {
	return &LibraryHandler{Service: service, Tokens: tokens}
}

// Register mounts the library routes behind the auth middleware.
func (h *LibraryHandler) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/library").Subrouter()
	sub.Use(h.Tokens.RequireAuth)

	sub.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	sub.HandleFunc("/favorites/toggle", h.ToggleFavorite).Methods(http.MethodPost)
	sub.HandleFunc("/favorites", h.ClearFavorites).Methods(http.MethodDelete)
	sub.HandleFunc("/favorites/{id:[0-9]+}", h.IsFavorite).Methods(http.MethodGet)

	sub.HandleFunc("/playlists", h.ListPlaylists).Methods(http.MethodGet)
	sub.HandleFunc("/playlists", h.CreatePlaylist).Methods(http.MethodPost)
	sub.HandleFunc("/playlists/{id}", h.UpdatePlaylist).Methods(http.MethodPut)
	sub.HandleFunc("/playlists/{id}", h.DeletePlaylist).Methods(http.MethodDelete)
	sub.HandleFunc("/playlists/{id}/movies", h.AddToPlaylist).Methods(http.MethodPost)
	sub.HandleFunc("/playlists/{id}/movies/{movieID:[0-9]+}", h.RemoveFromPlaylist).Methods(http.MethodDelete)
	sub.HandleFunc("/movies/{movieID:[0-9]+}/playlists", h.PlaylistsWithMovie).Methods(http.MethodGet)

	sub.HandleFunc("/ratings", h.ListRatings).Methods(http.MethodGet)
	sub.HandleFunc("/ratings/{movieID:[0-9]+}", h.RateMovie).Methods(http.MethodPut)
	sub.HandleFunc("/ratings/{movieID:[0-9]+}", h.RemoveRating).Methods(http.MethodDelete)
	sub.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
}

func (h *LibraryHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Favorites []models.FavoriteEntry `json:"favorites"`
		Count     int                    `json:"count"`
	}{h.Service.Favorites(), h.Service.FavoritesCount()})
}

// ToggleFavorite flips membership for the posted item. A 409 tells the
// front end to surface the login prompt.
func (h *LibraryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var item models.MediaItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.Service.ToggleFavorite(item) {
		http.Error(w, "no active session", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Favorite bool `json:"favorite"`
	}{h.Service.IsFavorite(item.ID)})
}

func (h *LibraryHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	if !h.Service.ClearFavorites() {
		http.Error(w, "no active session", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, struct {
		Favorite bool `json:"favorite"`
	}{h.Service.IsFavorite(id)})
}

func (h *LibraryHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	if query := r.URL.Query().Get("q"); query != "" {
		writeJSON(w, http.StatusOK, h.Service.SearchPlaylists(query))
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Playlists())
}

func (h *LibraryHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		http.Error(w, "playlist name is required", http.StatusBadRequest)
		return
	}

	playlist, err := h.Service.CreatePlaylist(request.Name, request.Description)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (h *LibraryHandler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var update models.PlaylistUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	playlist, err := h.Service.UpdatePlaylist(mux.Vars(r)["id"], update)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *LibraryHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePlaylist(mux.Vars(r)["id"]); err != nil {
		writeLibraryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	var item models.MediaItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.AddToPlaylist(mux.Vars(r)["id"], item); err != nil {
		writeLibraryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) RemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	movieID, _ := strconv.Atoi(vars["movieID"])
	if err := h.Service.RemoveFromPlaylist(vars["id"], movieID); err != nil {
		writeLibraryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) PlaylistsWithMovie(w http.ResponseWriter, r *http.Request) {
	movieID, _ := strconv.Atoi(mux.Vars(r)["movieID"])
	writeJSON(w, http.StatusOK, h.Service.PlaylistsWithMovie(movieID))
}

func (h *LibraryHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.RatedMovies())
}

func (h *LibraryHandler) RateMovie(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	movieID, _ := strconv.Atoi(mux.Vars(r)["movieID"])
	if err := h.Service.RateMovie(movieID, request.Rating); err != nil {
		writeLibraryError(w, err)
		return
	}

	rating, _ := h.Service.UserRating(movieID)
	writeJSON(w, http.StatusOK, struct {
		Rating int `json:"rating"`
	}{rating})
}

func (h *LibraryHandler) RemoveRating(w http.ResponseWriter, r *http.Request) {
	movieID, _ := strconv.Atoi(mux.Vars(r)["movieID"])
	if err := h.Service.RemoveRating(movieID); err != nil {
		writeLibraryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Stats())
}

func writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, librarysvc.ErrNoSession):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, librarysvc.ErrInvalidRating):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, librarysvc.ErrPlaylistNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
