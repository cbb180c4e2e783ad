// Package engagement handles per-item ratings and comments: validated,
// auth-gated writes and live aggregation of both sub-collections.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"cinelog/internal/catalog"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/store"
)

// ErrValidation is returned for out-of-range ratings and empty comment
// text, before any store call is made.
var ErrValidation = errors.New("validation failed")

// Rating is one user's rating of an item, at most one per user.
type Rating struct {
	UserID    string    `json:"user_id"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is an append-only record under an item.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary is the reduced view of an item's ratings. Count zero means
// no ratings yet; callers must render the pending marker, never an average
// of zero.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Pending reports whether the item has no ratings yet.
func (s RatingSummary) Pending() bool { return s.Count == 0 }

// Summarize reduces ratings to their arithmetic mean, rounded to one
// decimal place.
func Summarize(ratings []Rating) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	avg := float64(sum) / float64(len(ratings))
	return RatingSummary{
		Average: math.Round(avg*10) / 10,
		Count:   len(ratings),
	}
}

// ItemEngagement is the combined live state of one item's detail view.
type ItemEngagement struct {
	Ratings  RatingSummary `json:"ratings"`
	Comments []Comment     `json:"comments"`
}

func ratingsPath(t catalog.ContentType, itemID string) string {
	return catalog.Collection(t) + "/" + itemID + "/ratings"
}

func commentsPath(t catalog.ContentType, itemID string) string {
	return catalog.Collection(t) + "/" + itemID + "/comments"
}

type ratingInput struct {
	Value int `validate:"min=1,max=5"`
}

// Aggregator performs the engagement operations.
type Aggregator struct {
	store    store.Store
	validate *validator.Validate
}

// NewAggregator creates an Aggregator over st.
func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{
		store:    st,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SubmitRating upserts the user's rating for the item. Resubmitting
// replaces the previous value, so the aggregate holds at most one rating
// per user.
func (a *Aggregator) SubmitRating(ctx context.Context, user *identity.User, t catalog.ContentType, itemID string, value int) error {
	if user == nil {
		return identity.ErrUnauthorized
	}
	if err := a.validate.Struct(ratingInput{Value: value}); err != nil {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	rating := Rating{UserID: user.UID, Value: value, UpdatedAt: time.Now()}
	if _, err := a.store.Set(ctx, ratingsPath(t, itemID), user.UID, rating); err != nil {
		logging.Error().Err(err).Str("uid", user.UID).Str("item", itemID).Msg("failed to save rating")
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// SubmitComment appends a comment. Whitespace-only text is rejected with
// ErrValidation so the caller can tell the user, rather than dropping the
// input silently. The comment is not echoed back; the subscription
// round-trip is the single source of truth.
func (a *Aggregator) SubmitComment(ctx context.Context, user *identity.User, t catalog.ContentType, itemID, text string) error {
	if user == nil {
		return identity.ErrUnauthorized
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: comment text is empty", ErrValidation)
	}

	author := user.DisplayName
	if author == "" {
		author = "Anonymous"
	}

	comment := Comment{Author: author, Text: text, CreatedAt: time.Now()}
	if _, err := a.store.Set(ctx, commentsPath(t, itemID), "", comment); err != nil {
		logging.Error().Err(err).Str("uid", user.UID).Str("item", itemID).Msg("failed to save comment")
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

// Item returns a one-shot engagement view for an item's detail page.
func (a *Aggregator) Item(ctx context.Context, t catalog.ContentType, itemID string) (ItemEngagement, error) {
	ratingDocs, err := a.store.GetAll(ctx, ratingsPath(t, itemID))
	if err != nil {
		return ItemEngagement{}, fmt.Errorf("failed to list ratings: %w", err)
	}
	ratings, err := store.DecodeAll[Rating](ratingDocs)
	if err != nil {
		return ItemEngagement{}, err
	}

	commentDocs, err := a.store.GetAll(ctx, commentsPath(t, itemID))
	if err != nil {
		return ItemEngagement{}, fmt.Errorf("failed to list comments: %w", err)
	}
	comments, err := store.DecodeAll[Comment](commentDocs)
	if err != nil {
		return ItemEngagement{}, err
	}

	return ItemEngagement{Ratings: Summarize(ratings), Comments: comments}, nil
}

// itemWatch combines the two per-item subscriptions behind one handle.
type itemWatch struct {
	mu       sync.Mutex
	state    ItemEngagement
	ratings  store.Subscription
	comments store.Subscription
}

func (w *itemWatch) Close() {
	w.ratings.Close()
	w.comments.Close()
}

// WatchItem opens live subscriptions on an item's ratings and comments and
// invokes fn with the combined state after every snapshot from either
// stream. The two streams are independent; no cross-stream ordering is
// assumed. Close the returned handle when the detail view is dismissed.
func (a *Aggregator) WatchItem(t catalog.ContentType, itemID string, fn func(ItemEngagement)) store.Subscription {
	w := &itemWatch{}

	w.ratings = a.store.Subscribe(ratingsPath(t, itemID), func(snap store.Snapshot) {
		ratings, err := store.DecodeAll[Rating](snap.Docs)
		if err != nil {
			logging.Error().Err(err).Str("item", itemID).Msg("dropping undecodable ratings snapshot")
			return
		}
		w.mu.Lock()
		w.state.Ratings = Summarize(ratings)
		state := w.state
		w.mu.Unlock()
		fn(state)
	})

	w.comments = a.store.Subscribe(commentsPath(t, itemID), func(snap store.Snapshot) {
		// Comments render in whatever order the store delivers.
		comments, err := store.DecodeAll[Comment](snap.Docs)
		if err != nil {
			logging.Error().Err(err).Str("item", itemID).Msg("dropping undecodable comments snapshot")
			return
		}
		w.mu.Lock()
		w.state.Comments = comments
		state := w.state
		w.mu.Unlock()
		fn(state)
	})

	return w
}
