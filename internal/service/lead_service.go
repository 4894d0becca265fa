package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/mapper"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeadDocumentKind selects which of a lead's two document slots an
// upload or delete targets.
type LeadDocumentKind string

const (
	LeadDocumentTender       LeadDocumentKind = "tender_document"
	LeadDocumentWorkingSheet LeadDocumentKind = "working_sheet"
)

// IsValid checks whether the kind names a known document slot
func (k LeadDocumentKind) IsValid() bool {
	return k == LeadDocumentTender || k == LeadDocumentWorkingSheet
}

type LeadService struct {
	leadRepo     *repository.LeadRepository
	customerRepo *repository.CustomerRepository
	store        storage.Storage
	logger       *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	customerRepo *repository.CustomerRepository,
	store storage.Storage,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		customerRepo: customerRepo,
		store:        store,
		logger:       logger,
	}
}

func (s *LeadService) Create(ctx context.Context, req *domain.LeadRequest) (*domain.LeadDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	leadDate, err := parseDate(req.LeadDate)
	if err != nil {
		return nil, err
	}
	followUpDate, err := parseDate(req.FollowUpDate)
	if err != nil {
		return nil, err
	}

	products := buildProductLines(req.Products)
	lead := &domain.Lead{
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		ProformaNumber: req.ProformaNumber,
		LeadDate:       leadDate,
		Products:       products,
		TotalAmount:    domain.TotalAmount(products),
		FollowUpDate:   followUpDate,
		Remark:         req.Remark,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("customer", lead.CustomerName),
		zap.Float64("total_amount", lead.TotalAmount),
	)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Update replaces a lead's core fields. Converted leads are immutable
// through this path; only document attachment and removal remain
// permitted after conversion.
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.LeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.IsConverted {
		return nil, fmt.Errorf("%w: lead %s is converted and can no longer be edited", ErrConflict, id)
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	leadDate, err := parseDate(req.LeadDate)
	if err != nil {
		return nil, err
	}
	followUpDate, err := parseDate(req.FollowUpDate)
	if err != nil {
		return nil, err
	}

	products := buildProductLines(req.Products)
	lead.CustomerID = customer.ID
	lead.CustomerName = customer.Name
	lead.ProformaNumber = req.ProformaNumber
	lead.LeadDate = leadDate
	lead.Products = products
	lead.TotalAmount = domain.TotalAmount(products)
	lead.FollowUpDate = followUpDate
	lead.Remark = req.Remark

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Delete removes a lead. The derived invoice, if any, is not touched;
// its cached copy becomes the surviving record of truth.
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getLead(ctx, id); err != nil {
		return err
	}
	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (s *LeadService) List(ctx context.Context, page, pageSize int, search string) ([]domain.LeadDTO, int64, error) {
	leads, total, err := s.leadRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, total, nil
}

// UploadDocument stores a tender document or working sheet and attaches
// it to the lead, replacing any previous file in that slot. Permitted
// on converted leads; the derived invoice picks the change up on its
// next read.
func (s *LeadService) UploadDocument(ctx context.Context, id uuid.UUID, kind LeadDocumentKind, filename, contentType string, size int64, data io.Reader) (*domain.LeadDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, kind)
	}
	if !domain.IsAllowedDocument(filename) {
		return nil, fmt.Errorf("%w: file type not allowed, expected one of %v", ErrInvalidInput, domain.AllowedDocumentExtensions())
	}
	if size > domain.MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d MB limit", ErrInvalidInput, domain.MaxUploadSize>>20)
	}

	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}

	storagePath, _, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	previous := s.documentSlot(lead, kind)
	s.setDocumentSlot(lead, kind, &storagePath)

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		// best effort: don't leave the new blob orphaned
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned document", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}

	if previous != nil {
		if err := s.store.Delete(ctx, *previous); err != nil {
			s.logger.Warn("failed to delete replaced document",
				zap.String("storage_path", *previous),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("lead document uploaded",
		zap.String("lead_id", id.String()),
		zap.String("kind", string(kind)),
		zap.String("filename", filename),
	)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// DeleteDocument detaches a document slot and deletes its blob
func (s *LeadService) DeleteDocument(ctx context.Context, id uuid.UUID, kind LeadDocumentKind) (*domain.LeadDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, kind)
	}

	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}

	current := s.documentSlot(lead, kind)
	if current == nil {
		return nil, fmt.Errorf("%w: lead %s has no %s", ErrNotFound, id, kind)
	}

	s.setDocumentSlot(lead, kind, nil)
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to detach document: %w", err)
	}

	if err := s.store.Delete(ctx, *current); err != nil {
		s.logger.Warn("failed to delete document blob",
			zap.String("storage_path", *current),
			zap.Error(err),
		)
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// BulkCreate inserts one lead per imported group of rows, resolving
// each group's customer by name, case-insensitive. Groups whose
// proforma number already belongs to a lead are skipped; a group
// naming an unknown customer is a group error, not a failure of the
// whole import.
func (s *LeadService) BulkCreate(ctx context.Context, imports []domain.LeadImportRequest) (*domain.BulkUploadResultDTO, error) {
	result := &domain.BulkUploadResultDTO{}

	for i, imp := range imports {
		if imp.CustomerName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("group %d: missing customer name", i+1))
			continue
		}

		if imp.ProformaNumber != "" {
			if _, err := s.leadRepo.GetByProformaNumber(ctx, imp.ProformaNumber); err == nil {
				result.Skipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check existing lead: %w", err)
			}
		}

		customer, err := s.customerRepo.GetByName(ctx, imp.CustomerName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("group %d: customer %q not found", i+1, imp.CustomerName))
				continue
			}
			return nil, fmt.Errorf("failed to resolve customer: %w", err)
		}

		req := domain.LeadRequest{
			CustomerID:     customer.ID,
			ProformaNumber: imp.ProformaNumber,
			LeadDate:       imp.LeadDate,
			FollowUpDate:   imp.FollowUpDate,
			Remark:         imp.Remark,
			Products:       imp.Products,
		}
		if _, err := s.Create(ctx, &req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("group %d: %v", i+1, err))
			continue
		}
		result.Created++
	}

	s.logger.Info("lead bulk upload completed",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *LeadService) getLead(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

func (s *LeadService) documentSlot(lead *domain.Lead, kind LeadDocumentKind) *string {
	if kind == LeadDocumentTender {
		return lead.TenderDocument
	}
	return lead.WorkingSheet
}

func (s *LeadService) setDocumentSlot(lead *domain.Lead, kind LeadDocumentKind, value *string) {
	if kind == LeadDocumentTender {
		lead.TenderDocument = value
		return
	}
	lead.WorkingSheet = value
}
