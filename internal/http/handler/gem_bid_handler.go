package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/internal/spreadsheet"
	"github.com/go-chi/chi/v5"
)

type GemBidHandler struct {
	bidService *service.GemBidService
}

func NewGemBidHandler(bidService *service.GemBidService) *GemBidHandler {
	return &GemBidHandler{bidService: bidService}
}

// Statuses handles GET /api/gem/bids/statuses
func (h *GemBidHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.bidService.Statuses())
}

// Create handles POST /api/gem/bids
func (h *GemBidHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.GemBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.bidService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// Get handles GET /api/gem/bids/{id}
func (h *GemBidHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}

	dto, err := h.bidService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// List handles GET /api/gem/bids with pagination and search
func (h *GemBidHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, search := paginationParams(r)

	items, total, err := h.bidService.List(r.Context(), page, pageSize, search)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// ListNew handles GET /api/gem/bids/new
func (h *GemBidHandler) ListNew(w http.ResponseWriter, r *http.Request) {
	items, err := h.bidService.ListNew(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// ListCompleted handles GET /api/gem/bids/completed
func (h *GemBidHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	items, err := h.bidService.ListCompleted(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Update handles PUT /api/gem/bids/{id}
func (h *GemBidHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}

	var req domain.GemBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.bidService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// SetStatus handles PUT /api/gem/bids/{id}/status
func (h *GemBidHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}

	var req domain.SetBidStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.bidService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/gem/bids/{id}
func (h *GemBidHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}

	if err := h.bidService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// UploadDocument handles POST /api/gem/bids/{id}/documents
func (h *GemBidHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}

	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing upload file")
		return
	}
	defer file.Close()

	dto, err := h.bidService.AttachDocument(r.Context(), id,
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// DeleteDocument handles DELETE /api/gem/bids/{id}/documents/{index}
func (h *GemBidHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bid ID")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document index")
		return
	}

	dto, err := h.bidService.RemoveDocument(r.Context(), id, index)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// BulkUpload handles POST /api/gem/bids/bulk-upload
func (h *GemBidHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing upload file")
		return
	}
	defer file.Close()

	reqs, err := spreadsheet.ParseGemBids(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.bidService.BulkCreate(r.Context(), reqs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Template handles GET /api/gem/bids/template
func (h *GemBidHandler) Template(w http.ResponseWriter, r *http.Request) {
	serveTemplate(w, "gem_bids.xlsx", spreadsheet.GemBidHeaders)
}
