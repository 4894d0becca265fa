package service

import (
	"fmt"
	"time"

	"github.com/bora-tech/crm-api/internal/domain"
)

// parseDate parses an optional "2006-01-02" date from a request.
// Empty input yields nil.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, value)
	}
	t = t.UTC()
	return &t, nil
}

// buildProductLines converts request lines into stored lines, numbering
// them and computing per-line amounts. Client-supplied amounts are
// never trusted.
func buildProductLines(reqs []domain.ProductLineRequest) domain.ProductLines {
	lines := make(domain.ProductLines, len(reqs))
	for i, req := range reqs {
		lines[i] = domain.ProductLine{
			SrNo:        i + 1,
			ProductName: req.ProductName,
			PartNumber:  req.PartNumber,
			Category:    req.Category,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			Amount:      domain.LineAmount(req.Quantity, req.UnitPrice),
		}
	}
	return lines
}

// buildGemOrderItems converts request items into stored items with the
// server-computed remaining amount.
func buildGemOrderItems(reqs []domain.GemOrderItemRequest) (domain.GemOrderItems, error) {
	items := make(domain.GemOrderItems, len(reqs))
	for i, req := range reqs {
		orderDate, err := parseDate(req.OrderDate)
		if err != nil {
			return nil, err
		}
		deliveryDate, err := parseDate(req.DeliveryDate)
		if err != nil {
			return nil, err
		}
		items[i] = domain.GemOrderItem{
			SKU:             req.SKU,
			Vendor:          req.Vendor,
			Price:           req.Price,
			Quantity:        req.Quantity,
			InvoiceValue:    req.InvoiceValue,
			AdvancePaid:     req.AdvancePaid,
			RemainingAmount: domain.RoundMoney(req.InvoiceValue - req.AdvancePaid),
			OrderDate:       orderDate,
			DeliveryDate:    deliveryDate,
		}
	}
	return items, nil
}
