package service_test

import (
	"context"
	"testing"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createGemOrderService(db *gorm.DB) *service.GemOrderService {
	return service.NewGemOrderService(repository.NewGemOrderRepository(db), zap.NewNop())
}

func gemOrderRequest(bidNumber string) *domain.GemOrderRequest {
	return &domain.GemOrderRequest{
		BidNumber: bidNumber,
		Items: []domain.GemOrderItemRequest{
			{
				SKU:          "SKU-001",
				Vendor:       "Vendor Ltd",
				Price:        120,
				Quantity:     10,
				InvoiceValue: 1200,
				AdvancePaid:  400,
				OrderDate:    "2026-08-10",
			},
		},
	}
}

func TestGemOrderService_Create_ComputesRemaining(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createGemOrderService(db)

	order, err := svc.Create(context.Background(), gemOrderRequest("GEM-001"))
	require.NoError(t, err)

	assert.Equal(t, "GEM-001", order.BidNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 800.0, order.Items[0].RemainingAmount)
	require.NotNil(t, order.Items[0].OrderDate)
}

func TestGemOrderService_Create_InvalidDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createGemOrderService(db)

	req := gemOrderRequest("GEM-001")
	req.Items[0].DeliveryDate = "next week"

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGemOrderService_Update_ClearsLegacyColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createGemOrderService(db)
	ctx := context.Background()

	sku := "OLD-SKU"
	invoiceValue := 500.0
	advance := 100.0
	legacy := &domain.GemOrder{
		BidNumber:          "GEM-LEGACY",
		LegacySKU:          &sku,
		LegacyInvoiceValue: &invoiceValue,
		LegacyAdvancePaid:  &advance,
	}
	require.NoError(t, db.Create(legacy).Error)

	updated, err := svc.Update(ctx, legacy.ID, gemOrderRequest("GEM-LEGACY"))
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "SKU-001", updated.Items[0].SKU)

	var stored domain.GemOrder
	require.NoError(t, db.First(&stored, "id = ?", legacy.ID).Error)
	assert.Nil(t, stored.LegacySKU)
	assert.Nil(t, stored.LegacyInvoiceValue)
	assert.Nil(t, stored.LegacyAdvancePaid)
}

func TestGemOrderService_GetByID_NormalizesLegacyRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createGemOrderService(db)

	sku := "OLD-SKU"
	invoiceValue := 500.0
	advance := 100.0
	legacy := &domain.GemOrder{
		BidNumber:          "GEM-LEGACY",
		LegacySKU:          &sku,
		LegacyInvoiceValue: &invoiceValue,
		LegacyAdvancePaid:  &advance,
	}
	require.NoError(t, db.Create(legacy).Error)

	order, err := svc.GetByID(context.Background(), legacy.ID)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "OLD-SKU", order.Items[0].SKU)
	assert.Equal(t, 400.0, order.Items[0].RemainingAmount)

	var stored domain.GemOrder
	require.NoError(t, db.First(&stored, "id = ?", legacy.ID).Error)
	assert.Empty(t, stored.Items, "normalization must not write back")
}

func TestGemOrderService_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createGemOrderService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, gemOrderRequest("GEM-100"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, gemOrderRequest("GEM-200"))
	require.NoError(t, err)

	orders, total, err := svc.List(ctx, 1, 50, "gem-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "GEM-100", orders[0].BidNumber)
}

func TestGemOrderService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createGemOrderService(db)
	ctx := context.Background()

	order, err := svc.Create(ctx, gemOrderRequest("GEM-001"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, order.ID))

	_, err = svc.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
