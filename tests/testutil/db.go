package testutil

import (
	"testing"

	"github.com/bora-tech/crm-api/internal/database"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the full
// schema migrated. Each call returns an isolated store, so tests do not
// share state and need no cleanup.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory store
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestCustomer inserts a customer and returns it
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()

	customer := &domain.Customer{
		Name:          name,
		ReferenceName: "Reference",
		ContactNumber: "9876543210",
		Email:         "customer@example.com",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestLead inserts a lead for a customer with the given product
// lines and returns it. Amounts are expected to be precomputed by the
// caller.
func CreateTestLead(t *testing.T, db *gorm.DB, customer *domain.Customer, products domain.ProductLines) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Products:     products,
		TotalAmount:  domain.TotalAmount(products),
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// ProductLine builds a stored product line with the server-side amount
func ProductLine(name string, quantity, unitPrice float64) domain.ProductLine {
	return domain.ProductLine{
		SrNo:        1,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      domain.LineAmount(quantity, unitPrice),
	}
}
