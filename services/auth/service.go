// Package auth implements the demo credential flow. The persisted profile
// record under the `user` key is the single source of truth for
// "authenticated": present means logged in, absent means logged out.
package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"cinescope/internal/storage"
	"cinescope/models"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match the demo account.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password"
	demoUserID   = 1
)

// Service holds the active session and its persisted profile record.
type Service struct {
	store storage.Store

	mu       sync.Mutex
	user     *models.User
	demoHash []byte
}

// NewService restores any persisted session from the store. The demo
// credential is hashed once at startup so login runs through the same bcrypt
// comparison a real account record would.
func NewService(store storage.Store) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("seed demo credential: %w", err)
	}

	s := &Service{store: store, demoHash: hash}
	s.restore()
	return s, nil
}

// restore hydrates the session from the persisted profile. A corrupt record
// is logged and removed, leaving the session unauthenticated.
func (s *Service) restore() {
	data, err := s.store.Get(storage.KeyUser)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return
	}
	if err != nil {
		log.Printf("[auth] read stored profile: %v", err)
		return
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		log.Printf("[auth] discarding corrupt profile record: %v", err)
		if err := s.store.Delete(storage.KeyUser); err != nil {
			log.Printf("[auth] remove corrupt profile record: %v", err)
		}
		return
	}
	s.user = &user
}

// Login validates the demo credentials, persists the profile and activates
// the session. The profile name is derived from the mailbox part of the
// email.
func (s *Service) Login(email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !strings.EqualFold(email, demoEmail) {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(s.demoHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	user := models.User{
		ID:    demoUserID,
		Email: email,
		Name:  strings.SplitN(email, "@", 2)[0],
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.store.Set(storage.KeyUser, data); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	out := user
	return &out, nil
}

// Logout removes the persisted profile and clears the session.
func (s *Service) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Delete(storage.KeyUser); err != nil {
		log.Printf("[auth] remove profile record: %v", err)
	}
}

// Current returns a copy of the active profile, or nil when logged out.
func (s *Service) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	out := *s.user
	return &out
}

// IsAuthenticated reports whether a profile is active.
func (s *Service) IsAuthenticated() bool {
	return s.Current() != nil
}
