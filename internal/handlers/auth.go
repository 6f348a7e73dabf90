package handlers

import (
	"net/http"

	"github.com/givehope/donation-api/internal/request"
)

// AuthHandler handles authentication checks
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Verify reports the authenticated subject. It must sit behind the auth
// middleware, which rejects invalid tokens before this runs.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	subject := request.SubjectFromContext(r)
	if subject == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No authenticated subject")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"subject": subject})
}
