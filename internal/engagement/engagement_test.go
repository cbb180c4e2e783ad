package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinelog/internal/catalog"
	"cinelog/internal/identity"
	"cinelog/internal/store"
)

type countingStore struct {
	store.Store
	sets int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewMemory()}
}

func (c *countingStore) Set(ctx context.Context, path, id string, v any) (string, error) {
	c.sets++
	return c.Store.Set(ctx, path, id, v)
}

var carol = &identity.User{UID: "carol", DisplayName: "Carol"}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		values  []int
		average float64
		count   int
		pending bool
	}{
		{"no ratings", nil, 0, 0, true},
		{"single", []int{4}, 4.0, 1, false},
		{"mean of 1 5 3", []int{1, 5, 3}, 3.0, 3, false},
		{"rounded to one decimal", []int{2, 3, 3}, 2.7, 3, false},
		{"half", []int{1, 2}, 1.5, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratings := make([]Rating, len(tt.values))
			for i, v := range tt.values {
				ratings[i] = Rating{UserID: "u", Value: v}
			}
			got := Summarize(ratings)
			if got.Average != tt.average || got.Count != tt.count {
				t.Errorf("Summarize(%v) = %+v, want average %v count %d", tt.values, got, tt.average, tt.count)
			}
			if got.Pending() != tt.pending {
				t.Errorf("Pending() = %v, want %v", got.Pending(), tt.pending)
			}
		})
	}
}

func TestSubmitRatingValidation(t *testing.T) {
	st := newCountingStore()
	a := NewAggregator(st)
	ctx := context.Background()

	for _, value := range []int{0, -1, 6, 100} {
		err := a.SubmitRating(ctx, carol, catalog.TypeMovie, "m1", value)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("SubmitRating(%d): got %v, want ErrValidation", value, err)
		}
	}
	if st.sets != 0 {
		t.Errorf("invalid ratings reached the store (%d writes)", st.sets)
	}
}

func TestSubmitRatingUnauthorized(t *testing.T) {
	st := newCountingStore()
	a := NewAggregator(st)

	err := a.SubmitRating(context.Background(), nil, catalog.TypeMovie, "m1", 3)
	if !errors.Is(err, identity.ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
	if st.sets != 0 {
		t.Errorf("unauthorized rating reached the store (%d writes)", st.sets)
	}
}

func TestSubmitRatingUpserts(t *testing.T) {
	a := NewAggregator(store.NewMemory())
	ctx := context.Background()

	if err := a.SubmitRating(ctx, carol, catalog.TypeMovie, "m1", 3); err != nil {
		t.Fatalf("first rating: %v", err)
	}
	if err := a.SubmitRating(ctx, carol, catalog.TypeMovie, "m1", 5); err != nil {
		t.Fatalf("second rating: %v", err)
	}

	eng, err := a.Item(ctx, catalog.TypeMovie, "m1")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if eng.Ratings.Count != 1 {
		t.Fatalf("got %d ratings, want exactly 1 after resubmit", eng.Ratings.Count)
	}
	if eng.Ratings.Average != 5.0 {
		t.Errorf("average = %v, want 5.0 (latest value only)", eng.Ratings.Average)
	}
}

func TestSubmitCommentValidation(t *testing.T) {
	st := newCountingStore()
	a := NewAggregator(st)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\t "} {
		err := a.SubmitComment(ctx, carol, catalog.TypeMovie, "m1", text)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("SubmitComment(%q): got %v, want ErrValidation", text, err)
		}
	}
	if st.sets != 0 {
		t.Errorf("blank comments reached the store (%d writes)", st.sets)
	}
}

func TestSubmitCommentUnauthorized(t *testing.T) {
	st := newCountingStore()
	a := NewAggregator(st)

	err := a.SubmitComment(context.Background(), nil, catalog.TypeMovie, "m1", "nice")
	if !errors.Is(err, identity.ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
	if st.sets != 0 {
		t.Errorf("unauthorized comment reached the store (%d writes)", st.sets)
	}
}

func TestSubmitCommentAppends(t *testing.T) {
	a := NewAggregator(store.NewMemory())
	ctx := context.Background()
	before := time.Now()

	if err := a.SubmitComment(ctx, carol, catalog.TypeMovie, "m1", "  loved it  "); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}

	eng, err := a.Item(ctx, catalog.TypeMovie, "m1")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if len(eng.Comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(eng.Comments))
	}

	c := eng.Comments[0]
	if c.Author != "Carol" {
		t.Errorf("author = %q, want Carol", c.Author)
	}
	if c.Text != "loved it" {
		t.Errorf("text = %q, want trimmed %q", c.Text, "loved it")
	}
	if c.CreatedAt.Before(before.Truncate(time.Second)) {
		t.Errorf("timestamp %v earlier than call time %v", c.CreatedAt, before)
	}
}

func TestSubmitCommentAnonymousAuthor(t *testing.T) {
	a := NewAggregator(store.NewMemory())
	ctx := context.Background()
	ghost := &identity.User{UID: "ghost"}

	if err := a.SubmitComment(ctx, ghost, catalog.TypeSeries, "s1", "first"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}

	eng, err := a.Item(ctx, catalog.TypeSeries, "s1")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if eng.Comments[0].Author != "Anonymous" {
		t.Errorf("author = %q, want Anonymous", eng.Comments[0].Author)
	}
}

func TestCommentsKeepStoreOrder(t *testing.T) {
	a := NewAggregator(store.NewMemory())
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if err := a.SubmitComment(ctx, carol, catalog.TypeMovie, "m1", text); err != nil {
			t.Fatalf("SubmitComment(%s): %v", text, err)
		}
	}

	eng, err := a.Item(ctx, catalog.TypeMovie, "m1")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	var texts []string
	for _, c := range eng.Comments {
		texts = append(texts, c.Text)
	}
	if len(texts) != 3 || texts[0] != "one" || texts[1] != "two" || texts[2] != "three" {
		t.Errorf("comment order = %v", texts)
	}
}

func TestWatchItemCombinesStreams(t *testing.T) {
	st := store.NewMemory()
	a := NewAggregator(st)
	ctx := context.Background()

	var latest ItemEngagement
	deliveries := 0
	sub := a.WatchItem(catalog.TypeMovie, "m1", func(state ItemEngagement) {
		latest = state
		deliveries++
	})
	defer sub.Close()

	// Two initial snapshots, one per stream.
	if deliveries != 2 {
		t.Fatalf("expected 2 initial deliveries, got %d", deliveries)
	}
	if !latest.Ratings.Pending() {
		t.Error("unrated item should report pending")
	}

	if err := a.SubmitRating(ctx, carol, catalog.TypeMovie, "m1", 4); err != nil {
		t.Fatalf("SubmitRating: %v", err)
	}
	if latest.Ratings.Count != 1 || latest.Ratings.Average != 4.0 {
		t.Errorf("after rating: %+v", latest.Ratings)
	}

	if err := a.SubmitComment(ctx, carol, catalog.TypeMovie, "m1", "solid"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	if len(latest.Comments) != 1 || latest.Comments[0].Text != "solid" {
		t.Errorf("after comment: %+v", latest.Comments)
	}
	// The rating survived the comment snapshot: the streams are combined,
	// not replacing each other.
	if latest.Ratings.Count != 1 {
		t.Errorf("rating state lost after comment snapshot: %+v", latest.Ratings)
	}

	sub.Close()
	had := deliveries
	if err := a.SubmitRating(ctx, carol, catalog.TypeMovie, "m1", 2); err != nil {
		t.Fatalf("SubmitRating after close: %v", err)
	}
	if deliveries != had {
		t.Errorf("closed watch still delivered (%d -> %d)", had, deliveries)
	}
}
