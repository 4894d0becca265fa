package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/mapper"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProformaInvoiceService is the conversion engine: it turns leads into
// invoices, enforces one-way conversion, and refreshes every invoice
// read from the live source lead.
type ProformaInvoiceService struct {
	invoiceRepo *repository.ProformaInvoiceRepository
	leadRepo    *repository.LeadRepository
	logger      *zap.Logger
}

func NewProformaInvoiceService(
	invoiceRepo *repository.ProformaInvoiceRepository,
	leadRepo *repository.LeadRepository,
	logger *zap.Logger,
) *ProformaInvoiceService {
	return &ProformaInvoiceService{
		invoiceRepo: invoiceRepo,
		leadRepo:    leadRepo,
		logger:      logger,
	}
}

// Convert creates a proforma invoice from a lead and marks the lead
// converted. Conversion is one-way: a second call for the same lead
// fails with a conflict. The two writes are sequential, not
// transactional; if marking the lead fails after the invoice insert,
// the invoice is the record of truth going forward.
func (s *ProformaInvoiceService) Convert(ctx context.Context, leadID uuid.UUID, proformaNumber string) (*domain.ProformaInvoiceDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, leadID)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.IsConverted {
		return nil, fmt.Errorf("%w: lead %s is already converted", ErrConflict, leadID)
	}

	if proformaNumber == "" {
		proformaNumber = lead.ProformaNumber
	}
	if proformaNumber == "" {
		return nil, fmt.Errorf("%w: proforma number required for conversion", ErrInvalidInput)
	}

	now := time.Now().UTC()
	leadRef := lead.ID
	invoice := &domain.ProformaInvoice{
		ProformaNumber: proformaNumber,
		CustomerID:     lead.CustomerID,
		CustomerName:   lead.CustomerName,
		InvoiceDate:    &now,
		Products:       lead.Products,
		TotalAmount:    lead.TotalAmount,
		TenderDocument: lead.TenderDocument,
		WorkingSheet:   lead.WorkingSheet,
		LeadID:         &leadRef,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	lead.IsConverted = true
	lead.ProformaNumber = proformaNumber
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to mark lead converted: %w", err)
	}

	s.logger.Info("lead converted to proforma invoice",
		zap.String("lead_id", leadID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("proforma_number", proformaNumber),
	)

	dto := mapper.ToProformaInvoiceDTO(invoice)
	return &dto, nil
}

// GetByID returns an invoice after refreshing it from its source lead
func (s *ProformaInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProformaInvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := s.resyncFromLead(ctx, invoice); err != nil {
		return nil, err
	}

	dto := mapper.ToProformaInvoiceDTO(invoice)
	return &dto, nil
}

// List returns invoices, each refreshed from its source lead
func (s *ProformaInvoiceService) List(ctx context.Context, page, pageSize int, search string) ([]domain.ProformaInvoiceDTO, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	dtos := make([]domain.ProformaInvoiceDTO, len(invoices))
	for i := range invoices {
		if err := s.resyncFromLead(ctx, &invoices[i]); err != nil {
			return nil, 0, err
		}
		dtos[i] = mapper.ToProformaInvoiceDTO(&invoices[i])
	}
	return dtos, total, nil
}

// UpdateProducts overrides an invoice's product lines directly. The
// path exists for legacy invoices without a source lead; while a live
// lead is linked the call fails, because the next read would silently
// clobber the edit with the lead's state.
func (s *ProformaInvoiceService) UpdateProducts(ctx context.Context, id uuid.UUID, reqs []domain.ProductLineRequest) (*domain.ProformaInvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.LeadID != nil {
		if _, err := s.leadRepo.GetByID(ctx, *invoice.LeadID); err == nil {
			return nil, fmt.Errorf("%w: invoice %s is synced from its lead; edit the lead instead", ErrConflict, id)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get source lead: %w", err)
		}
	}

	products := buildProductLines(reqs)
	invoice.Products = products
	invoice.TotalAmount = domain.TotalAmount(products)

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	dto := mapper.ToProformaInvoiceDTO(invoice)
	return &dto, nil
}

func (s *ProformaInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.invoiceRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// resyncFromLead overwrites the invoice's cached fields from the live
// source lead and persists the refreshed copy. A missing lead is not an
// error: the stored cache simply remains the record of truth.
func (s *ProformaInvoiceService) resyncFromLead(ctx context.Context, invoice *domain.ProformaInvoice) error {
	if invoice.LeadID == nil {
		return nil
	}

	lead, err := s.leadRepo.GetByID(ctx, *invoice.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get source lead: %w", err)
	}

	invoice.Products = lead.Products
	invoice.TotalAmount = lead.TotalAmount
	invoice.TenderDocument = lead.TenderDocument
	invoice.WorkingSheet = lead.WorkingSheet
	invoice.CustomerName = lead.CustomerName

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("failed to persist invoice resync: %w", err)
	}
	return nil
}
