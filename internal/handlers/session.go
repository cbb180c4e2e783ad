package handlers

import (
	"net/http"

	"cinelog/internal/identity"
	"cinelog/internal/utils"
)

type SessionHandler struct {
	provider *identity.Provider
}

func NewSessionHandler(provider *identity.Provider) *SessionHandler {
	return &SessionHandler{provider: provider}
}

type tokenRequest struct {
	Token string `json:"token"`
}

// SignInAnonymous serves POST /api/session/anonymous.
func (h *SessionHandler) SignInAnonymous(w http.ResponseWriter, r *http.Request) {
	token, user, err := h.provider.SignInAnonymous(r.Context())
	if err != nil {
		respondForError(w, err, "Failed to sign in")
		return
	}
	respondSession(w, token, user)
}

// SignInWithToken serves POST /api/session/token: exchange of a custom
// token minted by a trusted backend.
func (h *SessionHandler) SignInWithToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := utils.DecodeBody(r, &req); err != nil || req.Token == "" {
		utils.RespondError(w, "Token is required", http.StatusBadRequest)
		return
	}

	token, user, err := h.provider.SignInWithToken(r.Context(), req.Token)
	if err != nil {
		respondForError(w, err, "Failed to sign in")
		return
	}
	respondSession(w, token, user)
}

// SignInInteractive serves POST /api/session/interactive: exchange of a
// token issued by the external identity provider.
func (h *SessionHandler) SignInInteractive(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := utils.DecodeBody(r, &req); err != nil || req.Token == "" {
		utils.RespondError(w, "Token is required", http.StatusBadRequest)
		return
	}

	token, user, err := h.provider.SignInInteractive(r.Context(), req.Token)
	if err != nil {
		respondForError(w, err, "Failed to sign in")
		return
	}
	respondSession(w, token, user)
}

// SignOut serves DELETE /api/session.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromRequest(r)
	if token == "" {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}

	if err := h.provider.SignOut(r.Context(), token); err != nil {
		respondForError(w, err, "Failed to sign out")
		return
	}

	utils.RespondJSON(w, map[string]interface{}{"message": "Signed out"}, http.StatusOK)
}

// Me serves GET /api/me: the signed-in user's profile.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := identity.FromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Sign in to continue", http.StatusUnauthorized)
		return
	}
	utils.RespondJSON(w, user, http.StatusOK)
}

func respondSession(w http.ResponseWriter, token string, user identity.User) {
	utils.RespondJSON(w, map[string]interface{}{
		"token": token,
		"user":  user,
	}, http.StatusOK)
}
