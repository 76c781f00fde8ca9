// Package config loads and persists the application settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"cinescope/utils"
)

// Settings is the full on-disk configuration.
type Settings struct {
	Server  ServerConfig  `json:"server"`
	Catalog CatalogConfig `json:"catalog"`
	Storage StorageConfig `json:"storage"`
	Search  SearchConfig  `json:"search"`
	Auth    AuthConfig    `json:"auth"`
	Log     LogConfig     `json:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogConfig configures the TMDB client.
type CatalogConfig struct {
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "badger".
	Backend string `json:"backend"`
	// Path is the data directory (file, badger) or database file (sqlite).
	Path string `json:"path"`
}

// SearchConfig tunes the debounced search cache.
type SearchConfig struct {
	CacheSize  int `json:"cacheSize"`
	DebounceMS int `json:"debounceMs"`
}

// AuthConfig holds the API session token settings. SessionSecret is
// generated on first load when empty.
type AuthConfig struct {
	SessionSecret string `json:"sessionSecret"`
	TokenTTLHours int    `json:"tokenTtlHours"`
}

// LogConfig configures optional rotated file logging. An empty File logs to
// stderr only.
type LogConfig struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
}

// Manager loads and saves the settings file, applying defaults and
// environment overrides on every load.
type Manager struct {
	path string
	mu   sync.Mutex
}

// NewManager returns a manager for the settings file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func defaultSettings() *Settings {
	return &Settings{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8585},
		Storage: StorageConfig{Backend: "file", Path: "data"},
		Search:  SearchConfig{CacheSize: 10, DebounceMS: 500},
		Auth:    AuthConfig{TokenTTLHours: 24},
		Log:     LogConfig{MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load reads the settings file, fills in defaults, applies CINESCOPE_*
// environment overrides and generates the session secret on first use.
// A missing file yields pure defaults.
func (m *Manager) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := defaultSettings()

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run, keep defaults.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	}

	applyDefaults(settings)
	applyEnvOverrides(settings)

	if settings.Auth.SessionSecret == "" {
		secret, err := utils.GenerateSessionSecret()
		if err != nil {
			return nil, err
		}
		settings.Auth.SessionSecret = secret
		if err := m.saveLocked(settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// Save persists the settings file, creating parent directories as needed.
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(settings)
}

func (m *Manager) saveLocked(settings *Settings) error {
	if dir := filepath.Dir(m.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func applyDefaults(s *Settings) {
	def := defaultSettings()
	if s.Server.Host == "" {
		s.Server.Host = def.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = def.Server.Port
	}
	if s.Storage.Backend == "" {
		s.Storage.Backend = def.Storage.Backend
	}
	if s.Storage.Path == "" {
		s.Storage.Path = def.Storage.Path
	}
	if s.Search.CacheSize <= 0 {
		s.Search.CacheSize = def.Search.CacheSize
	}
	if s.Search.DebounceMS <= 0 {
		s.Search.DebounceMS = def.Search.DebounceMS
	}
	if s.Auth.TokenTTLHours <= 0 {
		s.Auth.TokenTTLHours = def.Auth.TokenTTLHours
	}
	if s.Log.MaxSizeMB <= 0 {
		s.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if s.Log.MaxBackups <= 0 {
		s.Log.MaxBackups = def.Log.MaxBackups
	}
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("CINESCOPE_TMDB_API_KEY"); v != "" {
		s.Catalog.APIKey = v
	}
	if v := os.Getenv("CINESCOPE_TMDB_BASE_URL"); v != "" {
		s.Catalog.BaseURL = v
	}
	if v := os.Getenv("CINESCOPE_HOST"); v != "" {
		s.Server.Host = v
	}
	if v := os.Getenv("CINESCOPE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			s.Server.Port = port
		}
	}
	if v := os.Getenv("CINESCOPE_STORAGE_BACKEND"); v != "" {
		s.Storage.Backend = v
	}
	if v := os.Getenv("CINESCOPE_STORAGE_PATH"); v != "" {
		s.Storage.Path = v
	}
	if v := os.Getenv("CINESCOPE_SESSION_SECRET"); v != "" {
		s.Auth.SessionSecret = v
	}
}
