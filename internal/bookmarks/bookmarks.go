// Package bookmarks manages the per-user saved-items set.
package bookmarks

import (
	"context"
	"fmt"
	"time"

	"cinelog/internal/catalog"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/store"
)

// CollectionFor returns the store path of one user's bookmarks.
func CollectionFor(userID string) string {
	return "users/" + userID + "/bookmarks"
}

// Bookmark stores a full snapshot of the item as it looked when saved.
// Later catalog edits do not flow into existing bookmarks; that divergence
// is intended (the snapshot is the thing the user saved).
type Bookmark struct {
	catalog.Item
	SavedAt time.Time `json:"saved_at"`
}

// Manager performs the bookmark operations. Every operation requires an
// authenticated user and touches the store only after that check passes.
type Manager struct {
	store store.Store
}

// NewManager creates a Manager over st.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Add saves a snapshot of item for the user. Re-bookmarking an already
// bookmarked item replaces the stored snapshot.
func (m *Manager) Add(ctx context.Context, user *identity.User, item catalog.Item) error {
	if user == nil {
		return identity.ErrUnauthorized
	}

	bookmark := Bookmark{Item: item, SavedAt: time.Now()}
	if _, err := m.store.Set(ctx, CollectionFor(user.UID), item.ID, bookmark); err != nil {
		logging.Error().Err(err).Str("uid", user.UID).Str("item", item.ID).Msg("failed to save bookmark")
		return fmt.Errorf("failed to save bookmark: %w", err)
	}
	return nil
}

// Remove deletes the bookmark for contentID. Removing a bookmark that does
// not exist succeeds.
func (m *Manager) Remove(ctx context.Context, user *identity.User, contentID string) error {
	if user == nil {
		return identity.ErrUnauthorized
	}

	if err := m.store.Delete(ctx, CollectionFor(user.UID), contentID); err != nil {
		logging.Error().Err(err).Str("uid", user.UID).Str("item", contentID).Msg("failed to remove bookmark")
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

// Has reports whether the user has bookmarked contentID. Anonymous callers
// have no bookmarks.
func (m *Manager) Has(ctx context.Context, user *identity.User, contentID string) bool {
	if user == nil {
		return false
	}
	_, err := m.store.GetOne(ctx, CollectionFor(user.UID), contentID)
	return err == nil
}

// List returns the user's bookmarks in store order.
func (m *Manager) List(ctx context.Context, user *identity.User) ([]Bookmark, error) {
	if user == nil {
		return nil, identity.ErrUnauthorized
	}

	docs, err := m.store.GetAll(ctx, CollectionFor(user.UID))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return decode(docs)
}

// Watch opens a live subscription on the user's bookmarks. On every change
// fn receives the full replacement set, in store order. The caller owns the
// returned handle and must Close it when the view is dismissed.
func (m *Manager) Watch(user *identity.User, fn func([]Bookmark)) (store.Subscription, error) {
	if user == nil {
		return nil, identity.ErrUnauthorized
	}

	sub := m.store.Subscribe(CollectionFor(user.UID), func(snap store.Snapshot) {
		set, err := decode(snap.Docs)
		if err != nil {
			logging.Error().Err(err).Str("uid", user.UID).Msg("dropping undecodable bookmark snapshot")
			return
		}
		fn(set)
	})
	return sub, nil
}

func decode(docs []store.Document) ([]Bookmark, error) {
	set, err := store.DecodeAll[Bookmark](docs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bookmarks: %w", err)
	}
	return set, nil
}
