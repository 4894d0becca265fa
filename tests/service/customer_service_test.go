package service_test

import (
	"context"
	"testing"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createCustomerService(db *gorm.DB) *service.CustomerService {
	return service.NewCustomerService(repository.NewCustomerRepository(db), zap.NewNop())
}

func TestCustomerService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	req := &domain.CustomerRequest{
		Name:          "Acme Industries",
		ReferenceName: "Ramesh",
		ContactNumber: "9876543210",
		Email:         "contact@acme.example",
	}

	customer, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, req.Name, customer.Name)
	assert.Equal(t, req.ReferenceName, customer.ReferenceName)
	assert.Equal(t, req.ContactNumber, customer.ContactNumber)
	assert.Equal(t, req.Email, customer.Email)
	assert.NotEqual(t, uuid.Nil, customer.ID)
	assert.NotEmpty(t, customer.CreatedAt)
}

func TestCustomerService_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCustomerService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.CustomerRequest{Name: "Old Name"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &domain.CustomerRequest{
		Name:  "New Name",
		Email: "new@acme.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "new@acme.example", updated.Email)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
}

func TestCustomerService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.CustomerRequest{Name: "To Delete"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCustomerService_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	for _, name := range []string{"Acme Industries", "Bharat Supplies", "Acme Traders"} {
		_, err := svc.Create(ctx, &domain.CustomerRequest{Name: name})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 1, 50, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Len(t, all.Items, 3)

	matched, err := svc.List(ctx, 1, 50, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(2), matched.Total)
	assert.Len(t, matched.Items, 2)
}

func TestCustomerService_List_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, &domain.CustomerRequest{Name: "Customer"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Items, 2)
}

func TestCustomerService_BulkCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.CustomerRequest{Name: "Existing Customer"})
	require.NoError(t, err)

	result, err := svc.BulkCreate(ctx, []domain.CustomerRequest{
		{Name: "Existing Customer"},
		{Name: "Fresh Customer"},
		{Name: ""},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 4")
}
