package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nebula-forge-api/internal/application/registration"
	"github.com/nebula-forge-api/internal/domain"
)

// TokenSigner issues an access token for a freshly verified identity.
type TokenSigner interface {
	Sign(u *domain.UserIdentity) (string, error)
}

// RegistrationHandler handles the register-init / verify / resend endpoints.
type RegistrationHandler struct {
	svc    registration.Service
	signer TokenSigner
}

// NewRegistrationHandler builds the handler. signer may be nil, in which case
// verify responses carry no token.
func NewRegistrationHandler(svc registration.Service, signer TokenSigner) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, signer: signer}
}

func (h *RegistrationHandler) RegisterInit(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterInitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Initiate(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, domain.ErrDelivery):
			writeError(w, http.StatusInternalServerError, "Failed to send email")
		default:
			writeInternal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent"})
}

func (h *RegistrationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		writeVerifyError(w, r, err)
		return
	}

	resp := VerifyEnvelope{Success: true, User: user}
	if h.signer != nil {
		token, err := h.signer.Sign(user)
		if err != nil {
			// The pending record is already consumed; the identity still goes back.
			slog.ErrorContext(r.Context(), "sign access token", "user_id", user.ID, "error", err)
		} else {
			resp.Token = token
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RegistrationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Resend(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, "Email is required")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusBadRequest, "No pending registration found.")
		case errors.Is(err, domain.ErrDelivery):
			writeError(w, http.StatusInternalServerError, "Failed to send email")
		default:
			writeInternal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent"})
}

func writeVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "Email and code are required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusBadRequest, "No pending registration found.")
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusBadRequest, "Code expired.")
	case errors.Is(err, domain.ErrMismatch):
		writeError(w, http.StatusBadRequest, "Invalid code.")
	default:
		writeInternal(w, r, err)
	}
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
