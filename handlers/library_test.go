package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"cinescope/handlers"
	"cinescope/internal/storage"
	"cinescope/models"
	"cinescope/services/auth"
	"cinescope/services/library"
	"cinescope/utils"
)

// newTestServer wires the real auth and library services over an in-memory
// store, the way main does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewFileStore(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	authSvc, err := auth.NewService(store)
	require.NoError(t, err)
	librarySvc := library.NewService(store, authSvc)

	tokens := handlers.NewTokenIssuer("test-secret", time.Hour)

	router := utils.NewRouter()
	handlers.NewAuthHandler(authSvc, librarySvc, tokens).Register(router)
	handlers.NewLibraryHandler(librarySvc, tokens).Register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "demo@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool         `json:"success"`
		Token   string       `json:"token"`
		User    *models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.Token)
	require.Equal(t, "demo", out.User.Name)
	return out.Token
}

func TestLibraryRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/library/favorites", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/library/favorites", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "demo@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.False(t, out.Success)
	require.Contains(t, out.Message, "demo@example.com")
}

func TestFavoritesFlow(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	item := models.MediaItem{ID: 603, Kind: models.KindMovie, Title: "The Matrix"}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/library/favorites/toggle", token, item)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled struct {
		Favorite bool `json:"favorite"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&toggled))
	require.True(t, toggled.Favorite)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/library/favorites", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Favorites []models.FavoriteEntry `json:"favorites"`
		Count     int                    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Equal(t, 1, listing.Count)
	require.Equal(t, 603, listing.Favorites[0].ID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/library/favorites", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/library/favorites/603", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var membership struct {
		Favorite bool `json:"favorite"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&membership))
	require.False(t, membership.Favorite)
}

func TestToggleAfterLogoutConflicts(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The token is still signature-valid but no session is active.
	item := models.MediaItem{ID: 603, Title: "The Matrix"}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/library/favorites/toggle", token, item)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPlaylistFlow(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/library/playlists", token, map[string]string{
		"name":        "Watch Later",
		"description": "rainy days",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var playlist models.Playlist
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&playlist))
	require.NotEmpty(t, playlist.ID)

	item := models.MediaItem{ID: 27205, Title: "Inception"}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/library/playlists/"+playlist.ID+"/movies", token, item)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/library/movies/27205/playlists", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var holding []models.Playlist
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&holding))
	require.Len(t, holding, 1)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/library/playlists/missing/movies", token, item)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/library/playlists/"+playlist.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRatingValidationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/library/ratings/603", token, map[string]int{"rating": 11})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/library/ratings/603", token, map[string]int{"rating": 8})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rated struct {
		Rating int `json:"rating"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rated))
	require.Equal(t, 8, rated.Rating)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/library/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.PlaylistStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 1, stats.TotalRatings)
	require.InDelta(t, 8.0, stats.AverageRating, 0.001)
}

func TestMeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	require.Equal(t, "demo@example.com", user.Email)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := handlers.NewTokenIssuer("secret", time.Hour)

	signed, err := tokens.Issue(42)
	require.NoError(t, err)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, 42, userID)

	other := handlers.NewTokenIssuer("different-secret", time.Hour)
	_, err = other.Verify(signed)
	require.Error(t, err)
}
