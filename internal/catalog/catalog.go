// Package catalog holds the unified in-memory view of the movie and series
// collections.
package catalog

import (
	"context"
	"strings"
	"sync"

	"cinelog/internal/logging"
	"cinelog/internal/store"
)

// ContentType tags an item with the collection it came from.
type ContentType string

const (
	TypeMovie  ContentType = "movie"
	TypeSeries ContentType = "series"
)

// Collection returns the store path for a content type.
func Collection(t ContentType) string {
	if t == TypeSeries {
		return "public/series"
	}
	return "public/movies"
}

// ParseType maps the URL segment ("movies"/"series", singular accepted) to
// a ContentType.
func ParseType(s string) (ContentType, bool) {
	switch strings.ToLower(s) {
	case "movie", "movies":
		return TypeMovie, true
	case "series":
		return TypeSeries, true
	}
	return "", false
}

// Item is one catalog entry. Only Title is required; the rest are display
// strings. Type is assigned by the loader from the source collection and is
// not written back to the store by the seeder.
type Item struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Year        string      `json:"year,omitempty"`
	Poster      string      `json:"poster,omitempty"`
	Description string      `json:"description,omitempty"`
	Director    string      `json:"director,omitempty"`
	Actors      string      `json:"actors,omitempty"`
	Genre       string      `json:"genre,omitempty"`
	Type        ContentType `json:"type,omitempty"`
}

// Cache is the process-wide catalog view. It is loaded lazily and, once
// both collections are populated, never refetched; Invalidate is the only
// way to force a reload.
type Cache struct {
	store store.Store

	mu     sync.RWMutex
	movies []Item
	series []Item
}

// New creates an empty cache over st.
func New(st store.Store) *Cache {
	return &Cache{store: st}
}

// Load fetches both collections unless a previous call already populated
// them. A store error is logged and leaves the cache as it was; readers see
// an empty catalog rather than an error (fail-soft: the read path has no
// user-facing retry).
func (c *Cache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.movies) > 0 && len(c.series) > 0 {
		return
	}

	movies, err := c.fetch(ctx, TypeMovie)
	if err != nil {
		logging.Error().Err(err).Msg("failed to load movie collection")
		return
	}
	series, err := c.fetch(ctx, TypeSeries)
	if err != nil {
		logging.Error().Err(err).Msg("failed to load series collection")
		return
	}

	c.movies = movies
	c.series = series
	logging.Info().Int("movies", len(movies)).Int("series", len(series)).Msg("catalog loaded")
}

func (c *Cache) fetch(ctx context.Context, t ContentType) ([]Item, error) {
	docs, err := c.store.GetAll(ctx, Collection(t))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(docs))
	for _, doc := range docs {
		var item Item
		if err := store.Decode(doc, &item); err != nil {
			return nil, err
		}
		item.ID = doc.ID
		item.Type = t
		items = append(items, item)
	}
	return items, nil
}

// Invalidate drops the cached collections so the next Load refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.movies = nil
	c.series = nil
	c.mu.Unlock()
}

// Items returns the cached sequence for one content type, in store order.
func (c *Cache) Items(t ContentType) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t == TypeSeries {
		return append([]Item(nil), c.series...)
	}
	return append([]Item(nil), c.movies...)
}

// Search filters one collection by case-insensitive substring match on the
// title, preserving order. An empty query returns the whole collection.
func (c *Cache) Search(t ContentType, query string) []Item {
	items := c.Items(t)
	if query == "" {
		return items
	}

	needle := strings.ToLower(query)
	matches := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			matches = append(matches, item)
		}
	}
	return matches
}

// FindByID scans movies first, then series, returning the first item whose
// id matches. The catalog is small and rebuilt per process, so a linear
// scan is fine.
func (c *Cache) FindByID(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.movies {
		if item.ID == id {
			return item, true
		}
	}
	for _, item := range c.series {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
