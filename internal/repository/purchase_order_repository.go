package repository

import (
	"context"
	"strings"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	normalizeLegacyOrder(&order)
	return &order, nil
}

// GetByOrderNumber resolves an order by its PO number.
// Used by the spreadsheet bulk import to group rows.
func (r *PurchaseOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("order_number = ?", strings.TrimSpace(orderNumber)).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	normalizeLegacyOrder(&order)
	return &order, nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, order *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *PurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PurchaseOrder{}, "id = ?", id).Error
}

func (r *PurchaseOrderRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.PurchaseOrder, int64, error) {
	var orders []domain.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(vendor_name) LIKE ?", searchPattern, searchPattern)
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
		normalizeLegacyOrder(&orders[i])
	}
	return orders, total, nil
}

// ListLinkedByInvoice returns all orders placed against one invoice.
// An invoice may have zero, one or many linked orders.
func (r *PurchaseOrderRepository) ListLinkedByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.PurchaseOrder, error) {
	var orders []domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("purpose = ? AND proforma_invoice_id = ?", domain.PurposeLinked, invoiceID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		normalizeLegacyOrder(&orders[i])
	}
	return orders, nil
}

func (r *PurchaseOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Count(&count).Error
	return count, err
}

// normalizeLegacyOrder converts a pre line-array record carrying a flat
// single product into the canonical one-element products array. The
// stored row is not mutated; normalization happens at the read boundary
// only.
func normalizeLegacyOrder(order *domain.PurchaseOrder) {
	if len(order.Products) > 0 || order.LegacyProduct == nil {
		return
	}

	line := domain.ProductLine{
		SrNo:        1,
		ProductName: *order.LegacyProduct,
	}
	if order.LegacyCategory != nil {
		line.Category = *order.LegacyCategory
	}
	if order.LegacyQuantity != nil {
		line.Quantity = *order.LegacyQuantity
	}
	if order.LegacyPrice != nil {
		line.UnitPrice = *order.LegacyPrice
	}
	if order.LegacyAmount != nil {
		line.Amount = *order.LegacyAmount
	} else {
		line.Amount = domain.LineAmount(line.Quantity, line.UnitPrice)
	}

	order.Products = domain.ProductLines{line}
	if order.TotalAmount == 0 {
		order.TotalAmount = line.Amount
	}
}
