package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"cinescope/config"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	manager := config.NewManager(path)

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Server.Host != "0.0.0.0" || settings.Server.Port != 8585 {
		t.Fatalf("unexpected server defaults: %+v", settings.Server)
	}
	if settings.Storage.Backend != "file" || settings.Storage.Path != "data" {
		t.Fatalf("unexpected storage defaults: %+v", settings.Storage)
	}
	if settings.Search.CacheSize != 10 || settings.Search.DebounceMS != 500 {
		t.Fatalf("unexpected search defaults: %+v", settings.Search)
	}
	if settings.Auth.TokenTTLHours != 24 {
		t.Fatalf("unexpected auth defaults: %+v", settings.Auth)
	}
}

func TestLoadGeneratesAndPersistsSessionSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	manager := config.NewManager(path)

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if settings.Auth.SessionSecret == "" {
		t.Fatalf("expected a generated session secret")
	}

	// The generated secret is written back so restarts keep tokens valid.
	again, err := manager.Load()
	if err != nil {
		t.Fatalf("second load returned error: %v", err)
	}
	if again.Auth.SessionSecret != settings.Auth.SessionSecret {
		t.Fatalf("expected the secret to be stable across loads")
	}
}

func TestLoadFillsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":9000},"catalog":{"apiKey":"abc"}}`), 0o600); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	settings, err := config.NewManager(path).Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if settings.Server.Port != 9000 {
		t.Fatalf("expected the configured port, got %d", settings.Server.Port)
	}
	if settings.Server.Host != "0.0.0.0" {
		t.Fatalf("expected the host default to fill in, got %q", settings.Server.Host)
	}
	if settings.Catalog.APIKey != "abc" {
		t.Fatalf("expected the api key kept, got %q", settings.Catalog.APIKey)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	if _, err := config.NewManager(path).Load(); err == nil {
		t.Fatalf("expected a parse error for malformed settings")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CINESCOPE_TMDB_API_KEY", "env-key")
	t.Setenv("CINESCOPE_PORT", "7070")
	t.Setenv("CINESCOPE_STORAGE_BACKEND", "sqlite")
	t.Setenv("CINESCOPE_SESSION_SECRET", "env-secret")

	path := filepath.Join(t.TempDir(), "config.json")
	settings, err := config.NewManager(path).Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Catalog.APIKey != "env-key" {
		t.Fatalf("expected env api key, got %q", settings.Catalog.APIKey)
	}
	if settings.Server.Port != 7070 {
		t.Fatalf("expected env port, got %d", settings.Server.Port)
	}
	if settings.Storage.Backend != "sqlite" {
		t.Fatalf("expected env backend, got %q", settings.Storage.Backend)
	}
	if settings.Auth.SessionSecret != "env-secret" {
		t.Fatalf("expected env secret, got %q", settings.Auth.SessionSecret)
	}
}

func TestEnvironmentPortIgnoredWhenNotNumeric(t *testing.T) {
	t.Setenv("CINESCOPE_PORT", "not-a-port")

	path := filepath.Join(t.TempDir(), "config.json")
	settings, err := config.NewManager(path).Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if settings.Server.Port != 8585 {
		t.Fatalf("expected the default port when the override is garbage, got %d", settings.Server.Port)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	manager := config.NewManager(path)

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	settings.Catalog.APIKey = "saved-key"
	if err := manager.Save(settings); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected the file written: %v", err)
	}
	var onDisk config.Settings
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("expected valid JSON on disk: %v", err)
	}
	if onDisk.Catalog.APIKey != "saved-key" {
		t.Fatalf("unexpected persisted settings: %+v", onDisk.Catalog)
	}
}
