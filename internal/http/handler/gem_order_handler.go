package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/service"
)

type GemOrderHandler struct {
	orderService *service.GemOrderService
}

func NewGemOrderHandler(orderService *service.GemOrderService) *GemOrderHandler {
	return &GemOrderHandler{orderService: orderService}
}

// Create handles POST /api/gem/orders
func (h *GemOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.GemOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// Get handles GET /api/gem/orders/{id}
func (h *GemOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid gem order ID")
		return
	}

	dto, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// List handles GET /api/gem/orders with pagination and search
func (h *GemOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, search := paginationParams(r)

	items, total, err := h.orderService.List(r.Context(), page, pageSize, search)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// Update handles PUT /api/gem/orders/{id}
func (h *GemOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid gem order ID")
		return
	}

	var req domain.GemOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/gem/orders/{id}
func (h *GemOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid gem order ID")
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
