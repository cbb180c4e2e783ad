package handlers

import (
	"errors"
	"net/http"

	"cinelog/internal/engagement"
	"cinelog/internal/identity"
	"cinelog/internal/utils"
)

// respondForError maps domain errors onto HTTP responses. Store failures
// come out as a generic 500; the details stay in the logs.
func respondForError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
	case errors.Is(err, engagement.ErrValidation):
		utils.RespondError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		utils.RespondError(w, fallback, http.StatusInternalServerError)
	}
}
