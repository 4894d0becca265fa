package repository

import (
	"context"
	"strings"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProformaInvoiceRepository struct {
	db *gorm.DB
}

func NewProformaInvoiceRepository(db *gorm.DB) *ProformaInvoiceRepository {
	return &ProformaInvoiceRepository{db: db}
}

func (r *ProformaInvoiceRepository) Create(ctx context.Context, invoice *domain.ProformaInvoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *ProformaInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProformaInvoice, error) {
	var invoice domain.ProformaInvoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByLeadID resolves the invoice derived from a lead, if any
func (r *ProformaInvoiceRepository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (*domain.ProformaInvoice, error) {
	var invoice domain.ProformaInvoice
	err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByProformaNumber resolves an invoice by its proforma number.
// Used by the spreadsheet import to link purchase orders.
func (r *ProformaInvoiceRepository) GetByProformaNumber(ctx context.Context, proformaNumber string) (*domain.ProformaInvoice, error) {
	var invoice domain.ProformaInvoice
	err := r.db.WithContext(ctx).
		Where("proforma_number = ?", strings.TrimSpace(proformaNumber)).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *ProformaInvoiceRepository) Update(ctx context.Context, invoice *domain.ProformaInvoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *ProformaInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProformaInvoice{}, "id = ?", id).Error
}

func (r *ProformaInvoiceRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.ProformaInvoice, int64, error) {
	var invoices []domain.ProformaInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ProformaInvoice{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(proforma_number) LIKE ? OR LOWER(customer_name) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&invoices).Error

	return invoices, total, err
}

// ListAll returns every invoice, newest first. The margin calculator
// joins the full set against linked orders.
func (r *ProformaInvoiceRepository) ListAll(ctx context.Context) ([]domain.ProformaInvoice, error) {
	var invoices []domain.ProformaInvoice
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *ProformaInvoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProformaInvoice{}).Count(&count).Error
	return count, err
}
