package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinescope/models"
	catalogsvc "cinescope/services/catalog"
	searchsvc "cinescope/services/search"
)

type catalogService interface {
	List(ctx context.Context, kind models.MediaKind, category catalogsvc.Category) ([]models.MediaItem, error)
	Search(ctx context.Context, kind models.MediaKind, query string) ([]models.MediaItem, error)
	Suggestions(ctx context.Context, limit int) ([]models.MediaItem, error)
	DetailBundle(ctx context.Context, kind models.MediaKind, id int) (*models.DetailBundle, error)
}

type searchService interface {
	SearchNow(ctx context.Context, query string) ([]models.MediaItem, error)
}

var _ catalogService = (*catalogsvc.Client)(nil)
var _ searchService = (*searchsvc.Service)(nil)

// CatalogHandler serves the curated lists, search and title details.
type CatalogHandler struct {
	Catalog catalogService
	Search  searchService
}

func NewCatalogHandler(catalog catalogService, search searchService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Search: search}
}

// Register mounts the catalog routes.
func (h *CatalogHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/search", h.SearchTitles).Methods(http.MethodGet)
	r.HandleFunc("/api/search/suggestions", h.Suggestions).Methods(http.MethodGet)
	r.HandleFunc("/api/{kind:movie|series|tv}/{category:[a-z_]+}", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/{kind:movie|series|tv}/{id:[0-9]+}", h.Detail).Methods(http.MethodGet)
}

func parseKind(raw string) models.MediaKind {
	if raw == "series" || raw == "tv" {
		return models.KindSeries
	}
	return models.KindMovie
}

// List serves one curated list, e.g. /api/movie/popular or
// /api/series/airing_today.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := parseKind(vars["kind"])
	category := catalogsvc.Category(vars["category"])

	items, err := h.Catalog.List(r.Context(), kind, category)
	if err != nil {
		if errors.Is(err, catalogsvc.ErrUnknownCategory) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// SearchTitles serves free-text search. Movie searches go through the shared
// debounce cache; series searches hit the catalog directly.
func (h *CatalogHandler) SearchTitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	kind := parseKind(r.URL.Query().Get("kind"))

	var (
		items []models.MediaItem
		err   error
	)
	if kind == models.KindMovie {
		items, err = h.Search.SearchNow(r.Context(), query)
	} else {
		items, err = h.Catalog.Search(r.Context(), kind, query)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Suggestions serves the empty-search suggestion row.
func (h *CatalogHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Suggestions(r.Context(), 8)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Detail serves the aggregated detail view: details, credits and trailers.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		http.Error(w, "invalid title id", http.StatusBadRequest)
		return
	}

	bundle, err := h.Catalog.DetailBundle(r.Context(), parseKind(vars["kind"]), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}
