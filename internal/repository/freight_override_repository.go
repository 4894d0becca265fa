package repository

import (
	"context"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FreightOverrideRepository struct {
	db *gorm.DB
}

func NewFreightOverrideRepository(db *gorm.DB) *FreightOverrideRepository {
	return &FreightOverrideRepository{db: db}
}

// Upsert sets the freight amount for an (invoice, order) pair. The pair
// is not validated against existing records; a speculative override
// simply has no effect until a matching linked order exists.
func (r *FreightOverrideRepository) Upsert(ctx context.Context, invoiceID, orderID uuid.UUID, amount float64) error {
	override := domain.FreightOverride{
		ProformaInvoiceID: invoiceID,
		PurchaseOrderID:   orderID,
		FreightAmount:     amount,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proforma_invoice_id"}, {Name: "purchase_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"freight_amount", "updated_at"}),
	}).Create(&override).Error
}

// Get returns the override for a pair, or gorm.ErrRecordNotFound.
// Callers treat an absent row as freight 0.
func (r *FreightOverrideRepository) Get(ctx context.Context, invoiceID, orderID uuid.UUID) (*domain.FreightOverride, error) {
	var override domain.FreightOverride
	err := r.db.WithContext(ctx).
		Where("proforma_invoice_id = ? AND purchase_order_id = ?", invoiceID, orderID).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// MapAll loads every override keyed by (invoice, order) pair, for the
// margin join
func (r *FreightOverrideRepository) MapAll(ctx context.Context) (map[[2]uuid.UUID]float64, error) {
	var overrides []domain.FreightOverride
	if err := r.db.WithContext(ctx).Find(&overrides).Error; err != nil {
		return nil, err
	}

	byPair := make(map[[2]uuid.UUID]float64, len(overrides))
	for _, o := range overrides {
		byPair[[2]uuid.UUID{o.ProformaInvoiceID, o.PurchaseOrderID}] = o.FreightAmount
	}
	return byPair, nil
}
