package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/service"
)

type MarginHandler struct {
	marginService *service.MarginService
}

func NewMarginHandler(marginService *service.MarginService) *MarginHandler {
	return &MarginHandler{marginService: marginService}
}

// List handles GET /api/margins
func (h *MarginHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.marginService.Compute(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// SetFreight handles PUT /api/margins/freight
func (h *MarginHandler) SetFreight(w http.ResponseWriter, r *http.Request) {
	var req domain.FreightOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.marginService.SetFreight(r.Context(), &req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
