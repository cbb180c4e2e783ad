package handlers

import (
	"net/http"

	"cinelog/internal/bookmarks"
	"cinelog/internal/catalog"
	"cinelog/internal/identity"
	"cinelog/internal/utils"
	"cinelog/internal/views"
)

type BookmarkHandler struct {
	bookmarks *bookmarks.Manager
	cache     *catalog.Cache
}

func NewBookmarkHandler(bm *bookmarks.Manager, cache *catalog.Cache) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bm, cache: cache}
}

// List serves GET /api/me/bookmarks.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := identity.FromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}

	set, err := h.bookmarks.List(r.Context(), user)
	if err != nil {
		respondForError(w, err, "Failed to load bookmarks")
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"bookmarks": views.BookmarkCards(set),
	}, http.StatusOK)
}

// Add serves PUT /api/me/bookmarks/{id}. The server snapshots the item
// from the catalog; the client only names the id.
func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, err := identity.FromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}

	itemID := utils.GetPathParam(r, "id")
	h.cache.Load(r.Context())
	item, found := h.cache.FindByID(itemID)
	if !found {
		utils.RespondError(w, "Content not found", http.StatusNotFound)
		return
	}

	if err := h.bookmarks.Add(r.Context(), user, item); err != nil {
		respondForError(w, err, "Failed to save bookmark")
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"bookmarked": true,
		"message":    "Added to bookmarks",
	}, http.StatusCreated)
}

// Remove serves DELETE /api/me/bookmarks/{id}. Removing a bookmark that is
// not there succeeds.
func (h *BookmarkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, err := identity.FromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}

	if err := h.bookmarks.Remove(r.Context(), user, utils.GetPathParam(r, "id")); err != nil {
		respondForError(w, err, "Failed to remove bookmark")
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"bookmarked": false,
		"message":    "Removed from bookmarks",
	}, http.StatusOK)
}
