// Package mapper converts domain entities into API response DTOs.
// Timestamps are rendered as ISO 8601, business dates as "2006-01-02".
package mapper

import (
	"time"

	"github.com/bora-tech/crm-api/internal/domain"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// ToCustomerDTO converts a customer to its response shape
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:            c.ID,
		Name:          c.Name,
		ReferenceName: c.ReferenceName,
		ContactNumber: c.ContactNumber,
		Email:         c.Email,
		CreatedAt:     formatTime(c.CreatedAt),
	}
}

// ToLeadDTO converts a lead to its response shape
func ToLeadDTO(l *domain.Lead) domain.LeadDTO {
	products := l.Products
	if products == nil {
		products = domain.ProductLines{}
	}
	return domain.LeadDTO{
		ID:             l.ID,
		CustomerID:     l.CustomerID,
		CustomerName:   l.CustomerName,
		ProformaNumber: l.ProformaNumber,
		LeadDate:       formatDate(l.LeadDate),
		Products:       products,
		TotalAmount:    l.TotalAmount,
		FollowUpDate:   formatDate(l.FollowUpDate),
		Remark:         l.Remark,
		TenderDocument: l.TenderDocument,
		WorkingSheet:   l.WorkingSheet,
		IsConverted:    l.IsConverted,
		CreatedAt:      formatTime(l.CreatedAt),
	}
}

// ToProformaInvoiceDTO converts an invoice to its response shape
func ToProformaInvoiceDTO(inv *domain.ProformaInvoice) domain.ProformaInvoiceDTO {
	products := inv.Products
	if products == nil {
		products = domain.ProductLines{}
	}
	return domain.ProformaInvoiceDTO{
		ID:             inv.ID,
		ProformaNumber: inv.ProformaNumber,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		InvoiceDate:    formatDate(inv.InvoiceDate),
		Products:       products,
		TotalAmount:    inv.TotalAmount,
		TenderDocument: inv.TenderDocument,
		WorkingSheet:   inv.WorkingSheet,
		LeadID:         inv.LeadID,
		CreatedAt:      formatTime(inv.CreatedAt),
	}
}

// ToPurchaseOrderDTO converts a purchase order to its response shape.
// Callers pass orders already normalized from any legacy flat-product
// form by the repository.
func ToPurchaseOrderDTO(o *domain.PurchaseOrder) domain.PurchaseOrderDTO {
	products := o.Products
	if products == nil {
		products = domain.ProductLines{}
	}
	return domain.PurchaseOrderDTO{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		OrderDate:         formatDate(o.OrderDate),
		VendorName:        o.VendorName,
		Purpose:           o.Purpose,
		ProformaInvoiceID: o.ProformaInvoiceID,
		ProformaNumber:    o.ProformaNumber,
		Products:          products,
		TotalAmount:       o.TotalAmount,
		CreatedAt:         formatTime(o.CreatedAt),
	}
}

// ToMarginEntryDTO converts a computed margin row to its response shape
func ToMarginEntryDTO(m *domain.MarginEntry) domain.MarginEntryDTO {
	return domain.MarginEntryDTO{
		ProformaInvoiceID: m.ProformaInvoiceID,
		ProformaNumber:    m.ProformaNumber,
		CustomerName:      m.CustomerName,
		PurchaseOrderID:   m.PurchaseOrderID,
		OrderNumber:       m.OrderNumber,
		ProformaTotal:     m.ProformaTotal,
		OrderTotal:        m.OrderTotal,
		RemainingAmount:   m.RemainingAmount,
		FreightAmount:     m.FreightAmount,
		MarginAmount:      m.MarginAmount,
	}
}

// ToGemBidDTO converts a bid to its response shape
func ToGemBidDTO(b *domain.GemBid) domain.GemBidDTO {
	history := b.StatusHistory
	if history == nil {
		history = domain.StatusHistory{}
	}
	documents := b.Documents
	if documents == nil {
		documents = domain.BidDocuments{}
	}

	dto := domain.GemBidDTO{
		ID:            b.ID,
		FirmName:      b.FirmName,
		BidNumber:     b.BidNumber,
		Details:       b.Details,
		StartDate:     formatDate(b.StartDate),
		EndDate:       formatDate(b.EndDate),
		EMDAmount:     b.EMDAmount,
		Quantity:      b.Quantity,
		City:          b.City,
		Department:    b.Department,
		ItemCategory:  b.ItemCategory,
		EPBGPercent:   b.EPBGPercent,
		EPBGMonths:    b.EPBGMonths,
		Status:        b.Status,
		StatusHistory: history,
		Documents:     documents,
		ReminderSent:  b.ReminderSent,
		CreatedAt:     formatTime(b.CreatedAt),
	}
	if b.ReminderSentAt != nil {
		dto.ReminderSentAt = formatTime(*b.ReminderSentAt)
	}
	return dto
}

// ToGemOrderDTO converts a GEM order to its response shape. Callers
// pass orders already normalized from any legacy single-SKU form.
func ToGemOrderDTO(o *domain.GemOrder) domain.GemOrderDTO {
	items := o.Items
	if items == nil {
		items = domain.GemOrderItems{}
	}
	return domain.GemOrderDTO{
		ID:        o.ID,
		BidNumber: o.BidNumber,
		Items:     items,
		CreatedAt: formatTime(o.CreatedAt),
	}
}
