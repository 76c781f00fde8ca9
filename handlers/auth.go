package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"cinescope/models"
	authsvc "cinescope/services/auth"
	librarysvc "cinescope/services/library"
)

type authService interface {
	Login(email, password string) (*models.User, error)
	Logout()
	Current() *models.User
}

// libraryLifecycle ties the library collections to the session: hydrate on
// login, drop on logout.
type libraryLifecycle interface {
	BeginSession()
	EndSession()
}

var _ authService = (*authsvc.Service)(nil)
var _ libraryLifecycle = (*librarysvc.Service)(nil)

// AuthHandler exposes the demo login flow and session introspection.
type AuthHandler struct {
	Service authService
	Library libraryLifecycle
	Tokens  *TokenIssuer
}

func NewAuthHandler(service authService, library libraryLifecycle, tokens *TokenIssuer) *AuthHandler {
	return &AuthHandler{Service: service, Library: library, Tokens: tokens}
}

// Register mounts the auth routes.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)
	r.Handle("/api/auth/me", h.Tokens.RequireAuth(http.HandlerFunc(h.Me))).Methods(http.MethodGet)
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Login validates the demo credentials and activates the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Login(request.Email, request.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, loginResponse{
				Success: false,
				Message: "Invalid credentials. Try demo@example.com / password",
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.Library.BeginSession()
	log.Printf("[auth-handler] session started for %s", user.Email)

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful!",
		Token:   token,
		User:    user,
	})
}

// Logout drops the session and its library state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Service.Logout()
	h.Library.EndSession()
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the active profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.Service.Current()
	if user == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[handlers] encode response: %v", err)
	}
}
