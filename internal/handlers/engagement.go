package handlers

import (
	"net/http"

	"cinelog/internal/catalog"
	"cinelog/internal/engagement"
	"cinelog/internal/identity"
	"cinelog/internal/utils"
)

type EngagementHandler struct {
	engagement *engagement.Aggregator
	cache      *catalog.Cache
}

func NewEngagementHandler(eng *engagement.Aggregator, cache *catalog.Cache) *EngagementHandler {
	return &EngagementHandler{engagement: eng, cache: cache}
}

type rateRequest struct {
	Value int `json:"value"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// Rate serves POST /api/catalog/{type}/{id}/rating. Resubmitting replaces
// the caller's previous rating.
func (h *EngagementHandler) Rate(w http.ResponseWriter, r *http.Request) {
	user, err := identity.FromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}

	contentType, itemID, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	var req rateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engagement.SubmitRating(r.Context(), user, contentType, itemID, req.Value); err != nil {
		respondForError(w, err, "Failed to save rating")
		return
	}

	utils.RespondJSON(w, map[string]interface{}{"message": "Rating saved"}, http.StatusOK)
}

// Comment serves POST /api/catalog/{type}/{id}/comments. The new comment is
// not echoed back; clients see it through the live subscription.
func (h *EngagementHandler) Comment(w http.ResponseWriter, r *http.Request) {
	user, err := identity.FromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}

	contentType, itemID, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engagement.SubmitComment(r.Context(), user, contentType, itemID, req.Text); err != nil {
		respondForError(w, err, "Failed to save comment")
		return
	}

	utils.RespondJSON(w, map[string]interface{}{"message": "Comment posted"}, http.StatusCreated)
}

// resolveItem validates the {type}/{id} pair against the catalog so
// engagement never accumulates under ids that do not exist.
func (h *EngagementHandler) resolveItem(w http.ResponseWriter, r *http.Request) (catalog.ContentType, string, bool) {
	contentType, ok := catalog.ParseType(utils.GetPathParam(r, "type"))
	if !ok {
		utils.RespondError(w, "Unknown content type", http.StatusBadRequest)
		return "", "", false
	}

	itemID := utils.GetPathParam(r, "id")
	h.cache.Load(r.Context())
	item, found := h.cache.FindByID(itemID)
	if !found || item.Type != contentType {
		utils.RespondError(w, "Content not found", http.StatusNotFound)
		return "", "", false
	}
	return contentType, itemID, true
}
