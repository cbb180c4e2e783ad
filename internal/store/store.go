// Package store provides the document store behind cinelog: collections of
// keyed JSON documents addressed by slash-separated paths, with upsert
// writes and live change subscriptions.
//
// Collection path layout:
//
//	public/movies
//	public/series
//	public/{movies|series}/{itemID}/ratings
//	public/{movies|series}/{itemID}/comments
//	users/{userID}/bookmarks
//	sessions
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetOne when no document exists for the id.
var ErrNotFound = errors.New("document not found")

// Document is a single stored record. Data holds the document body as JSON.
type Document struct {
	ID   string
	Data []byte
}

// Snapshot is a point-in-time view of one collection, delivered to
// subscribers on every change. Docs are in collection order (insertion
// order; upserts keep the original position).
type Snapshot struct {
	Path string
	Docs []Document
}

// Subscription is a live feed handle. Close releases it; the callback is
// never invoked after Close returns.
type Subscription interface {
	Close()
}

// Store is the document store contract. Set upserts and returns the
// document id, assigning one when the caller passes an empty id. Delete of
// an absent document is a no-op. Subscribe delivers the current snapshot
// immediately and again after every change to the collection; snapshots for
// one subscription are delivered in order, one at a time.
type Store interface {
	GetAll(ctx context.Context, path string) ([]Document, error)
	GetOne(ctx context.Context, path, id string) (Document, error)
	Set(ctx context.Context, path, id string, v any) (string, error)
	Delete(ctx context.Context, path, id string) error
	Subscribe(path string, fn func(Snapshot)) Subscription
	Close() error
}

// Decode unmarshals a document body into v.
func Decode(doc Document, v any) error {
	return unmarshal(doc.Data, v)
}

// DecodeAll unmarshals every document in docs into a slice of T, skipping
// nothing: a malformed document is an error, not silently dropped.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := unmarshal(doc.Data, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
