package repository

import (
	"context"
	"strings"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GemOrderRepository struct {
	db *gorm.DB
}

func NewGemOrderRepository(db *gorm.DB) *GemOrderRepository {
	return &GemOrderRepository{db: db}
}

func (r *GemOrderRepository) Create(ctx context.Context, order *domain.GemOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GemOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GemOrder, error) {
	var order domain.GemOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	normalizeLegacyGemOrder(&order)
	return &order, nil
}

func (r *GemOrderRepository) Update(ctx context.Context, order *domain.GemOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *GemOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.GemOrder{}, "id = ?", id).Error
}

func (r *GemOrderRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.GemOrder, int64, error) {
	var orders []domain.GemOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.GemOrder{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(bid_number) LIKE ?", searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range orders {
		normalizeLegacyGemOrder(&orders[i])
	}
	return orders, total, nil
}

// normalizeLegacyGemOrder converts a pre line-array record carrying a
// single flat SKU into the canonical one-element items array. Storage
// is not mutated.
func normalizeLegacyGemOrder(order *domain.GemOrder) {
	if len(order.Items) > 0 || order.LegacySKU == nil {
		return
	}

	item := domain.GemOrderItem{SKU: *order.LegacySKU}
	if order.LegacyVendor != nil {
		item.Vendor = *order.LegacyVendor
	}
	if order.LegacyPrice != nil {
		item.Price = *order.LegacyPrice
	}
	if order.LegacyQuantity != nil {
		item.Quantity = *order.LegacyQuantity
	}
	if order.LegacyInvoiceValue != nil {
		item.InvoiceValue = *order.LegacyInvoiceValue
	}
	if order.LegacyAdvancePaid != nil {
		item.AdvancePaid = *order.LegacyAdvancePaid
	}
	item.RemainingAmount = domain.RoundMoney(item.InvoiceValue - item.AdvancePaid)

	order.Items = domain.GemOrderItems{item}
}
