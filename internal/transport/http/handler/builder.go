package handler

import (
	"errors"
	"net/http"

	"github.com/nebula-forge-api/internal/application/builder"
	"github.com/nebula-forge-api/internal/domain"
)

// BuilderHandler handles builder applications.
type BuilderHandler struct {
	svc builder.Service
}

func NewBuilderHandler(svc builder.Service) *BuilderHandler { return &BuilderHandler{svc: svc} }

func (h *BuilderHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var app domain.BuilderApplication
	if err := decodeJSON(r, &app); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Apply(r.Context(), app); err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, domain.ErrDelivery):
			writeError(w, http.StatusInternalServerError, "Failed to send application email")
		default:
			writeInternal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Application submitted successfully"})
}
