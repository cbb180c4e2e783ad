// Package views maps catalog, bookmark and engagement state to the display
// structures the API returns. Everything here is a pure function; no store
// or HTTP types appear.
package views

import (
	"strconv"

	"cinelog/internal/bookmarks"
	"cinelog/internal/catalog"
	"cinelog/internal/engagement"
)

// PendingRating is the display value for an item nobody has rated yet. It
// is deliberately distinct from "0.0".
const PendingRating = "pending"

// Card is the list/grid representation of a catalog item.
type Card struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	Poster     string `json:"poster,omitempty"`
	Type       string `json:"type"`
	Bookmarked bool   `json:"bookmarked"`
}

// CommentView is one rendered comment.
type CommentView struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Detail is the full item page representation.
type Detail struct {
	Card
	Description string        `json:"description,omitempty"`
	Director    string        `json:"director,omitempty"`
	Actors      string        `json:"actors,omitempty"`
	Genre       string        `json:"genre,omitempty"`
	Rating      string        `json:"rating"`
	RatingCount int           `json:"rating_count"`
	Comments    []CommentView `json:"comments"`
}

// FormatRating renders a summary as a one-decimal average, or the pending
// marker when there are no ratings.
func FormatRating(s engagement.RatingSummary) string {
	if s.Pending() {
		return PendingRating
	}
	return strconv.FormatFloat(s.Average, 'f', 1, 64)
}

// NewCard renders one item.
func NewCard(item catalog.Item, bookmarked bool) Card {
	return Card{
		ID:         item.ID,
		Title:      item.Title,
		Year:       item.Year,
		Poster:     item.Poster,
		Type:       string(item.Type),
		Bookmarked: bookmarked,
	}
}

// Cards renders a catalog sequence, marking the items present in the
// caller's bookmark set.
func Cards(items []catalog.Item, bookmarked map[string]bool) []Card {
	out := make([]Card, len(items))
	for i, item := range items {
		out[i] = NewCard(item, bookmarked[item.ID])
	}
	return out
}

// BookmarkCards renders a bookmark set; every card is bookmarked by
// definition.
func BookmarkCards(set []bookmarks.Bookmark) []Card {
	out := make([]Card, len(set))
	for i, b := range set {
		out[i] = NewCard(b.Item, true)
	}
	return out
}

// NewDetail renders the item page from the item and its engagement state.
func NewDetail(item catalog.Item, eng engagement.ItemEngagement, bookmarked bool) Detail {
	comments := make([]CommentView, len(eng.Comments))
	for i, c := range eng.Comments {
		comments[i] = CommentView{
			Author:    c.Author,
			Text:      c.Text,
			CreatedAt: c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	return Detail{
		Card:        NewCard(item, bookmarked),
		Description: item.Description,
		Director:    item.Director,
		Actors:      item.Actors,
		Genre:       item.Genre,
		Rating:      FormatRating(eng.Ratings),
		RatingCount: eng.Ratings.Count,
		Comments:    comments,
	}
}

// BookmarkIndex builds the id set used to flag cards.
func BookmarkIndex(set []bookmarks.Bookmark) map[string]bool {
	index := make(map[string]bool, len(set))
	for _, b := range set {
		index[b.ID] = true
	}
	return index
}
