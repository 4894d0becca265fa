package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/internal/spreadsheet"
	"github.com/go-chi/chi/v5"
)

type LeadHandler struct {
	leadService    *service.LeadService
	invoiceService *service.ProformaInvoiceService
}

func NewLeadHandler(leadService *service.LeadService, invoiceService *service.ProformaInvoiceService) *LeadHandler {
	return &LeadHandler{
		leadService:    leadService,
		invoiceService: invoiceService,
	}
}

// Create handles POST /api/leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// Get handles GET /api/leads/{id}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	dto, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// List handles GET /api/leads with pagination and search
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, search := paginationParams(r)

	items, total, err := h.leadService.List(r.Context(), page, pageSize, search)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// Update handles PUT /api/leads/{id}
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	var req domain.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.leadService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/leads/{id}
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	if err := h.leadService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Convert handles POST /api/leads/{id}/convert
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	var req domain.ConvertLeadRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	dto, err := h.invoiceService.Convert(r.Context(), id, req.ProformaNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// UploadDocument handles POST /api/leads/{id}/documents/{kind}
func (h *LeadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}
	kind := service.LeadDocumentKind(chi.URLParam(r, "kind"))

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

	dto, err := h.leadService.UploadDocument(r.Context(), id, kind,
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// DeleteDocument handles DELETE /api/leads/{id}/documents/{kind}
func (h *LeadHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}
	kind := service.LeadDocumentKind(chi.URLParam(r, "kind"))

	dto, err := h.leadService.DeleteDocument(r.Context(), id, kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// BulkUpload handles POST /api/leads/bulk-upload with an Excel file
func (h *LeadHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing upload file")
		return
	}
	defer file.Close()

	imports, err := spreadsheet.ParseLeads(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.leadService.BulkCreate(r.Context(), imports)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Template handles GET /api/leads/template
func (h *LeadHandler) Template(w http.ResponseWriter, r *http.Request) {
	serveTemplate(w, "leads.xlsx", spreadsheet.LeadHeaders)
}
