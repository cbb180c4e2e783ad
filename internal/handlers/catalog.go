package handlers

import (
	"net/http"

	"cinelog/internal/bookmarks"
	"cinelog/internal/catalog"
	"cinelog/internal/engagement"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/utils"
	"cinelog/internal/views"
)

type CatalogHandler struct {
	cache      *catalog.Cache
	engagement *engagement.Aggregator
	bookmarks  *bookmarks.Manager
}

func NewCatalogHandler(cache *catalog.Cache, eng *engagement.Aggregator, bm *bookmarks.Manager) *CatalogHandler {
	return &CatalogHandler{
		cache:      cache,
		engagement: eng,
		bookmarks:  bm,
	}
}

// ListItems serves GET /api/catalog/{type}. An optional search query
// filters by title, case-insensitively; an optional limit caps the result
// count after filtering.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	contentType, ok := catalog.ParseType(utils.GetPathParam(r, "type"))
	if !ok {
		utils.RespondError(w, "Unknown content type", http.StatusBadRequest)
		return
	}

	h.cache.Load(r.Context())
	items := h.cache.Search(contentType, utils.GetQueryParam(r, "search", ""))
	if limit := utils.GetQueryParamInt(r, "limit", 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	// Bookmark flags only appear for signed-in callers.
	index := map[string]bool{}
	if user, err := identity.FromContext(r.Context()); err == nil {
		if set, err := h.bookmarks.List(r.Context(), user); err == nil {
			index = views.BookmarkIndex(set)
		}
	}

	utils.RespondJSON(w, map[string]interface{}{
		"results": views.Cards(items, index),
		"count":   len(items),
	}, http.StatusOK)
}

// GetItem serves GET /api/catalog/{type}/{id}: the full detail view with
// aggregated ratings and comments.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := utils.GetPathParam(r, "id")
	if itemID == "" {
		utils.RespondError(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	h.cache.Load(r.Context())
	item, found := h.cache.FindByID(itemID)
	if !found {
		utils.RespondError(w, "Content not found", http.StatusNotFound)
		return
	}

	eng, err := h.engagement.Item(r.Context(), item.Type, item.ID)
	if err != nil {
		// Degrade to an empty engagement section rather than failing the
		// whole page.
		logging.Error().Err(err).Str("item", item.ID).Msg("failed to load engagement")
		eng = engagement.ItemEngagement{}
	}

	user, _ := identity.FromContext(r.Context())
	bookmarked := h.bookmarks.Has(r.Context(), user, item.ID)

	utils.RespondJSON(w, views.NewDetail(item, eng, bookmarked), http.StatusOK)
}
