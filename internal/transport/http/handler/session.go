package handler

import (
	"net/http"

	"github.com/nebula-forge-api/internal/transport/http/middleware"
)

// Me returns the identity carried by the caller's access token.
func Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, MeEnvelope{
		ID:          claims.UserID,
		Name:        claims.Name,
		Email:       claims.Email,
		Role:        claims.Role,
		IsFirstTime: claims.IsFirstTime,
	})
}
