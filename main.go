package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinescope/config"
	"cinescope/handlers"
	"cinescope/internal/storage"
	"cinescope/services/auth"
	"cinescope/services/catalog"
	"cinescope/services/library"
	"cinescope/services/search"
	"cinescope/utils"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the settings file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("[main] %v", err)
	}
}

func run(configPath string) error {
	manager := config.NewManager(configPath)
	settings, err := manager.Load()
	if err != nil {
		return err
	}

	if settings.Log.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   settings.Log.File,
			MaxSize:    settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
		})
	}

	if settings.Catalog.APIKey == "" {
		return errors.New("catalog api key is not configured (set catalog.apiKey or CINESCOPE_TMDB_API_KEY)")
	}

	store, err := openStore(settings.Storage)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Printf("[main] storage backend %q at %s", settings.Storage.Backend, settings.Storage.Path)

	authSvc, err := auth.NewService(store)
	if err != nil {
		return err
	}

	librarySvc := library.NewService(store, authSvc)
	if authSvc.IsAuthenticated() {
		// A session survived the restart; hydrate straight away.
		librarySvc.BeginSession()
	}

	var catalogClient *catalog.Client
	if settings.Catalog.BaseURL != "" {
		catalogClient = catalog.NewClientWithBaseURL(settings.Catalog.APIKey, settings.Catalog.BaseURL)
	} else {
		catalogClient = catalog.NewClient(settings.Catalog.APIKey)
	}

	searchSvc := search.NewService(
		catalogClient.SearchMovies,
		time.Duration(settings.Search.DebounceMS)*time.Millisecond,
		settings.Search.CacheSize,
	)
	defer searchSvc.Cancel()

	tokens := handlers.NewTokenIssuer(
		settings.Auth.SessionSecret,
		time.Duration(settings.Auth.TokenTTLHours)*time.Hour,
	)

	router := utils.NewRouter()
	handlers.NewAuthHandler(authSvc, librarySvc, tokens).Register(router)
	handlers.NewCatalogHandler(catalogClient, searchSvc).Register(router)
	handlers.NewLibraryHandler(librarySvc, tokens).Register(router)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case "", "file":
		return storage.NewFileStore(afero.NewOsFs(), cfg.Path)
	case "sqlite":
		return storage.NewSQLiteStore(filepath.Join(cfg.Path, "cinescope.db"))
	case "badger":
		return storage.NewBadgerStore(filepath.Join(cfg.Path, "badger"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
