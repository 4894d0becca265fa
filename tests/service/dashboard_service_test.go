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
	"gorm.io/gorm"
)

func createDashboardService(db *gorm.DB) *service.DashboardService {
	return service.NewDashboardService(
		repository.NewCustomerRepository(db),
		repository.NewLeadRepository(db),
		repository.NewProformaInvoiceRepository(db),
		repository.NewPurchaseOrderRepository(db),
	)
}

func TestDashboardService_KPI_EmptyStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDashboardService(db)

	kpi, err := svc.KPI(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), kpi.CustomerCount)
	assert.Equal(t, int64(0), kpi.ActiveLeadCount)
	assert.Equal(t, int64(0), kpi.InvoiceCount)
	assert.Equal(t, int64(0), kpi.OrderCount)
	assert.Equal(t, 0.0, kpi.MarginSummary)
}

func TestDashboardService_KPI(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDashboardService(db)

	customer := testutil.CreateTestCustomer(t, db, "Acme Industries")

	// one active lead, one converted
	testutil.CreateTestLead(t, db, customer, domain.ProductLines{testutil.ProductLine("Widget", 1, 100)})
	converted := testutil.CreateTestLead(t, db, customer, domain.ProductLines{testutil.ProductLine("Widget", 1, 200)})
	converted.IsConverted = true
	require.NoError(t, db.Save(converted).Error)

	invoice := seedInvoice(t, db, "PI-2026-001", 1000)
	seedLinkedOrder(t, db, invoice, "PO-001", 600)
	seedLinkedOrder(t, db, invoice, "PO-002", 150)

	kpi, err := svc.KPI(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), kpi.CustomerCount)
	assert.Equal(t, int64(1), kpi.ActiveLeadCount)
	assert.Equal(t, int64(1), kpi.InvoiceCount)
	assert.Equal(t, int64(2), kpi.OrderCount)

	// (1000-600) + (1000-150), freight excluded
	assert.Equal(t, 1250.0, kpi.MarginSummary)
}
