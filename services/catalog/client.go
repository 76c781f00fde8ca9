package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc"

	"cinescope/models"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Category names one of the catalog's curated lists.
type Category string

const (
	CategoryPopular     Category = "popular"
	CategoryTrending    Category = "trending"
	CategoryTopRated    Category = "top_rated"
	CategoryUpcoming    Category = "upcoming"
	CategoryNowPlaying  Category = "now_playing"
	CategoryAiringToday Category = "airing_today"
	CategoryOnTheAir    Category = "on_the_air"
)

// ErrUnknownCategory is returned when a category does not exist for the
// requested media kind.
var ErrUnknownCategory = errors.New("unknown catalog category")

var movieCategoryPaths = map[Category]string{
	CategoryPopular:    "/movie/popular",
	CategoryTrending:   "/trending/movie/week",
	CategoryTopRated:   "/movie/top_rated",
	CategoryUpcoming:   "/movie/upcoming",
	CategoryNowPlaying: "/movie/now_playing",
}

var seriesCategoryPaths = map[Category]string{
	CategoryPopular:     "/tv/popular",
	CategoryTrending:    "/trending/tv/week",
	CategoryTopRated:    "/tv/top_rated",
	CategoryAiringToday: "/tv/airing_today",
	CategoryOnTheAir:    "/tv/on_the_air",
}

// Client talks to the TMDB v3 API. All list and search responses come back
// kind-tagged and genre-enriched.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a catalog client against the public TMDB endpoint.
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a catalog client against a custom endpoint,
// used by tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func kindPath(kind models.MediaKind) string {
	if kind == models.KindSeries {
		return "tv"
	}
	return "movie"
}

// get performs one GET against the catalog with bounded retries on transient
// failures. Non-2xx responses other than 429/5xx are not retried.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("catalog request %s: %w", path, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return retry.Unrecoverable(fmt.Errorf("decode %s: %w", path, err))
				}
				return nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("catalog %s: %s", path, resp.Status)
			default:
				return retry.Unrecoverable(fmt.Errorf("catalog %s failed: %s", path, resp.Status))
			}
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

type listResponse struct {
	Results []models.MediaItem `json:"results"`
}

// List fetches one of the curated lists for the given kind.
func (c *Client) List(ctx context.Context, kind models.MediaKind, category Category) ([]models.MediaItem, error) {
	paths := movieCategoryPaths
	if kind == models.KindSeries {
		paths = seriesCategoryPaths
	}
	path, ok := paths[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, kind, category)
	}

	var resp listResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return enhanceWithGenres(resp.Results, kind), nil
}

// Search runs a free-text title search for the given kind. An empty query
// returns an empty result without touching the network.
func (c *Client) Search(ctx context.Context, kind models.MediaKind, query string) ([]models.MediaItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.MediaItem{}, nil
	}

	var resp listResponse
	q := url.Values{"query": {query}}
	if err := c.get(ctx, "/search/"+kindPath(kind), q, &resp); err != nil {
		return nil, err
	}
	return enhanceWithGenres(resp.Results, kind), nil
}

// SearchMovies is shorthand for Search with the movie kind.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.MediaItem, error) {
	return c.Search(ctx, models.KindMovie, query)
}

// Suggestions returns up to limit popular movies for the empty search state.
func (c *Client) Suggestions(ctx context.Context, limit int) ([]models.MediaItem, error) {
	items, err := c.List(ctx, models.KindMovie, CategoryPopular)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type detailResponse struct {
	models.MediaItem
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Details fetches the full record for one title. Failures propagate to the
// caller.
func (c *Client) Details(ctx context.Context, kind models.MediaKind, id int) (*models.MediaItem, error) {
	var resp detailResponse
	path := "/" + kindPath(kind) + "/" + strconv.Itoa(id)
	if err := c.get(ctx, path, url.Values{"language": {"en-US"}}, &resp); err != nil {
		return nil, err
	}

	item := resp.MediaItem
	item.Kind = kind
	// Detail responses carry resolved genres instead of genre_ids.
	for _, g := range resp.Genres {
		item.GenreIDs = append(item.GenreIDs, g.ID)
		item.GenreNames = append(item.GenreNames, g.Name)
	}
	return &item, nil
}

// Credits fetches the cast and crew for one title. A failure degrades to
// empty credits so partial data never blocks the detail view.
func (c *Client) Credits(ctx context.Context, kind models.MediaKind, id int) models.Credits {
	var credits models.Credits
	path := "/" + kindPath(kind) + "/" + strconv.Itoa(id) + "/credits"
	if err := c.get(ctx, path, url.Values{"language": {"en-US"}}, &credits); err != nil {
		log.Printf("[catalog] credits %s/%d unavailable: %v", kind, id, err)
		return models.EmptyCredits()
	}
	if credits.Cast == nil {
		credits.Cast = []models.CastMember{}
	}
	if credits.Crew == nil {
		credits.Crew = []models.CrewMember{}
	}
	return credits
}

type videosResponse struct {
	Results []models.Video `json:"results"`
}

// Trailers fetches the playable trailers and teasers for one title. A failure
// degrades to an empty list.
func (c *Client) Trailers(ctx context.Context, kind models.MediaKind, id int) []models.Video {
	var resp videosResponse
	path := "/" + kindPath(kind) + "/" + strconv.Itoa(id) + "/videos"
	if err := c.get(ctx, path, url.Values{"language": {"en-US"}}, &resp); err != nil {
		log.Printf("[catalog] trailers %s/%d unavailable: %v", kind, id, err)
		return []models.Video{}
	}

	trailers := make([]models.Video, 0, len(resp.Results))
	for _, v := range resp.Results {
		if v.Playable() {
			trailers = append(trailers, v)
		}
	}
	return trailers
}

// DetailBundle fetches details, credits and trailers for one title
// concurrently. Only the detail fetch is fatal; credits and trailers degrade
// to their empty defaults.
func (c *Client) DetailBundle(ctx context.Context, kind models.MediaKind, id int) (*models.DetailBundle, error) {
	var (
		credits  models.Credits
		trailers []models.Video
	)

	var wg conc.WaitGroup
	wg.Go(func() { credits = c.Credits(ctx, kind, id) })
	wg.Go(func() { trailers = c.Trailers(ctx, kind, id) })

	item, err := c.Details(ctx, kind, id)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	return &models.DetailBundle{Item: *item, Credits: credits, Trailers: trailers}, nil
}
