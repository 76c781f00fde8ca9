// Package storage provides the durable key/value port backing the profile
// record and the per-user library collections. The layout mirrors the legacy
// browser storage: one JSON document per well-known key.
package storage

import "errors"

// ErrKeyNotFound is returned by Get when a key has never been written or has
// been deleted. Callers treat it as "empty collection", never as a failure.
var ErrKeyNotFound = errors.New("storage: key not found")

// Persisted record keys. The names are preserved verbatim from the legacy
// local-storage layout for compatibility.
const (
	KeyUser      = "user"
	KeyFavorites = "movieFavorites"
	KeyPlaylists = "moviePlaylists"
	KeyRatings   = "userMovieRatings"
)

// Store is the persistence port. Values are opaque byte slices (JSON in
// practice); implementations must make Set durable before returning.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)
	// Set writes value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	Close() error
}
