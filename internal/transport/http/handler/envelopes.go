package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nebula-forge-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// VerifyEnvelope wraps a successful verification.
type VerifyEnvelope struct {
	Success bool                 `json:"success"`
	User    *domain.UserIdentity `json:"user"`
	Token   string               `json:"token,omitempty"`
}

// MeEnvelope echoes the identity carried by an access token.
type MeEnvelope struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	IsFirstTime bool        `json:"isFirstTime"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
