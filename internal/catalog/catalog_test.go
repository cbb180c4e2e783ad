package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cinelog/internal/store"
)

func seedCatalog(t *testing.T) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()

	movies := []Item{
		{ID: "m1", Title: "The Long Goodbye"},
		{ID: "m2", Title: "Goodbye, Dragon Inn"},
		{ID: "m3", Title: "Heat"},
	}
	series := []Item{
		{ID: "s1", Title: "The Long Way Home"},
		{ID: "s2", Title: "Night Shift"},
	}
	for _, m := range movies {
		if _, err := st.Set(ctx, Collection(TypeMovie), m.ID, m); err != nil {
			t.Fatalf("seed movie: %v", err)
		}
	}
	for _, s := range series {
		if _, err := st.Set(ctx, Collection(TypeSeries), s.ID, s); err != nil {
			t.Fatalf("seed series: %v", err)
		}
	}
	return st
}

func TestLoadTagsTypesAndPreservesOrder(t *testing.T) {
	cache := New(seedCatalog(t))
	cache.Load(context.Background())

	movies := cache.Items(TypeMovie)
	if len(movies) != 3 {
		t.Fatalf("got %d movies, want 3", len(movies))
	}
	for _, m := range movies {
		if m.Type != TypeMovie {
			t.Errorf("movie %s tagged %q", m.ID, m.Type)
		}
	}

	series := cache.Items(TypeSeries)
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	for _, s := range series {
		if s.Type != TypeSeries {
			t.Errorf("series %s tagged %q", s.ID, s.Type)
		}
	}

	// Every merged item is findable by its id.
	for _, item := range append(movies, series...) {
		found, ok := cache.FindByID(item.ID)
		if !ok {
			t.Errorf("FindByID(%s) found nothing", item.ID)
			continue
		}
		if !reflect.DeepEqual(found, item) {
			t.Errorf("FindByID(%s) = %+v, want %+v", item.ID, found, item)
		}
	}
}

func TestLoadIdempotentOncePopulated(t *testing.T) {
	st := seedCatalog(t)
	cache := New(st)
	ctx := context.Background()

	cache.Load(ctx)
	first := cache.Items(TypeMovie)

	// A store change after the first load is invisible: the cache never
	// refetches on its own.
	if _, err := st.Set(ctx, Collection(TypeMovie), "m9", Item{ID: "m9", Title: "Late Arrival"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cache.Load(ctx)
	second := cache.Items(TypeMovie)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second Load changed the cache: %+v vs %+v", first, second)
	}

	// Invalidate is the only refresh path.
	cache.Invalidate()
	cache.Load(ctx)
	if got := len(cache.Items(TypeMovie)); got != 4 {
		t.Errorf("after Invalidate+Load got %d movies, want 4", got)
	}
}

// failingStore errors on every read.
type failingStore struct {
	store.Store
	calls int
}

func (f *failingStore) GetAll(ctx context.Context, path string) ([]store.Document, error) {
	f.calls++
	return nil, errors.New("store down")
}

func TestLoadFailSoftAndRetries(t *testing.T) {
	failing := &failingStore{}
	cache := New(failing)
	ctx := context.Background()

	cache.Load(ctx)
	if got := cache.Items(TypeMovie); len(got) != 0 {
		t.Errorf("failed load should leave the cache empty, got %d items", len(got))
	}

	// Not yet populated, so the next call tries again.
	cache.Load(ctx)
	if failing.calls < 2 {
		t.Errorf("expected a retry after failure, store saw %d calls", failing.calls)
	}
}

func TestSearch(t *testing.T) {
	cache := New(seedCatalog(t))
	cache.Load(context.Background())

	tests := []struct {
		name  string
		scope ContentType
		query string
		want  []string
	}{
		{"empty query returns all in order", TypeMovie, "", []string{"m1", "m2", "m3"}},
		{"lowercase", TypeMovie, "goodbye", []string{"m1", "m2"}},
		{"uppercase", TypeMovie, "GOODBYE", []string{"m1", "m2"}},
		{"mixed case", TypeMovie, "GoOdByE", []string{"m1", "m2"}},
		{"scope selects the collection", TypeSeries, "long", []string{"s1"}},
		{"no match", TypeMovie, "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cache.Search(tt.scope, tt.query)
			ids := make([]string, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Search(%s, %q) = %v, want %v", tt.scope, tt.query, ids, tt.want)
			}
		})
	}
}

func TestFindByIDNotFound(t *testing.T) {
	cache := New(seedCatalog(t))
	cache.Load(context.Background())

	if _, ok := cache.FindByID("nope"); ok {
		t.Error("FindByID(nope) reported a match")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
		ok   bool
	}{
		{"movies", TypeMovie, true},
		{"movie", TypeMovie, true},
		{"series", TypeSeries, true},
		{"SERIES", TypeSeries, true},
		{"books", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
