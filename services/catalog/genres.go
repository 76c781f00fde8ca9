package catalog

import "cinescope/models"

// Static genre vocabularies from the TMDB catalog. List and search responses
// only carry genre ids; these tables turn them into display names at
// ingestion.
var movieGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

var seriesGenres = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	37:    "Western",
}

// GenreName resolves a single genre id for the given media kind. Unknown ids
// resolve to "".
func GenreName(kind models.MediaKind, id int) string {
	if kind == models.KindSeries {
		return seriesGenres[id]
	}
	return movieGenres[id]
}

// enhanceWithGenres tags each item with its kind and resolves genre ids to
// names, dropping ids missing from the vocabulary.
func enhanceWithGenres(items []models.MediaItem, kind models.MediaKind) []models.MediaItem {
	for i := range items {
		items[i].Kind = kind
		names := make([]string, 0, len(items[i].GenreIDs))
		for _, id := range items[i].GenreIDs {
			if name := GenreName(kind, id); name != "" {
				names = append(names, name)
			}
		}
		items[i].GenreNames = names
	}
	return items
}
