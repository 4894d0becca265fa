package domain_test

import (
	"testing"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"no rounding needed", 100.25, 100.25},
		{"rounds half up", 10.005, 10.01},
		{"rounds down", 10.004, 10.0},
		{"negative value", -10.005, -10.01},
		{"zero", 0, 0},
		{"float drift", 0.1 + 0.2, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.RoundMoney(tt.input))
		})
	}
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name      string
		quantity  float64
		unitPrice float64
		expected  float64
	}{
		{"whole numbers", 10, 50, 500},
		{"fractional price rounds per line", 10, 99.999, 999.99},
		{"fractional quantity", 2.5, 10.1, 25.25},
		{"zero quantity", 0, 100, 0},
		{"sub-cent product", 3, 0.333, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.LineAmount(tt.quantity, tt.unitPrice))
		})
	}
}

func TestTotalAmount_SumsRoundedLineAmounts(t *testing.T) {
	lines := domain.ProductLines{
		{Quantity: 10, UnitPrice: 99.999, Amount: domain.LineAmount(10, 99.999)},
		{Quantity: 3, UnitPrice: 0.333, Amount: domain.LineAmount(3, 0.333)},
	}

	// 999.99 + 1.00, not round(999.99 + 0.999)
	assert.Equal(t, 1000.99, domain.TotalAmount(lines))
}

func TestTotalAmount_Empty(t *testing.T) {
	assert.Equal(t, 0.0, domain.TotalAmount(nil))
	assert.Equal(t, 0.0, domain.TotalAmount(domain.ProductLines{}))
}

func TestBidStatus_IsValid(t *testing.T) {
	for _, status := range domain.AllBidStatuses() {
		assert.True(t, status.IsValid(), "expected %q to be valid", status)
	}
	assert.False(t, domain.BidStatus("Unknown").IsValid())
	assert.False(t, domain.BidStatus("").IsValid())
	assert.False(t, domain.BidStatus("shortlisted").IsValid(), "status match is case-sensitive")
}

func TestBidStatus_Partition(t *testing.T) {
	completed := map[domain.BidStatus]bool{}
	for _, s := range domain.CompletedBidStatuses() {
		completed[s] = true
	}

	// every status is either new or completed, never both
	for _, s := range domain.AllBidStatuses() {
		assert.Equal(t, completed[s], s.IsCompleted(), "status %q", s)
	}

	assert.Len(t, domain.AllBidStatuses(), 9)
	assert.Len(t, domain.CompletedBidStatuses(), 4)
	assert.True(t, domain.BidStatusAwarded.IsCompleted())
	assert.False(t, domain.BidStatusRejected.IsCompleted(), "rejected bids stay in the new view")
}

func TestIsAllowedDocument(t *testing.T) {
	allowed := []string{"tender.pdf", "sheet.XLSX", "notes.doc", "form.docx", "data.xls", "scan.png"}
	for _, name := range allowed {
		assert.True(t, domain.IsAllowedDocument(name), "expected %q to be allowed", name)
	}

	rejected := []string{"image.jpg", "archive.zip", "script.sh", "noextension", "double.pdf.exe"}
	for _, name := range rejected {
		assert.False(t, domain.IsAllowedDocument(name), "expected %q to be rejected", name)
	}
}

func TestPurchaseOrderPurpose_IsValid(t *testing.T) {
	assert.True(t, domain.PurposeLinked.IsValid())
	assert.True(t, domain.PurposeStockInSale.IsValid())
	assert.False(t, domain.PurchaseOrderPurpose("other").IsValid())
}
