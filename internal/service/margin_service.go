package service

import (
	"context"
	"fmt"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/mapper"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MarginService derives margin rows on demand by joining invoices
// against their linked purchase orders. Nothing is stored; the numbers
// always reflect the records as they are now.
type MarginService struct {
	invoiceRepo *repository.ProformaInvoiceRepository
	orderRepo   *repository.PurchaseOrderRepository
	freightRepo *repository.FreightOverrideRepository
	logger      *zap.Logger
}

func NewMarginService(
	invoiceRepo *repository.ProformaInvoiceRepository,
	orderRepo *repository.PurchaseOrderRepository,
	freightRepo *repository.FreightOverrideRepository,
	logger *zap.Logger,
) *MarginService {
	return &MarginService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		freightRepo: freightRepo,
		logger:      logger,
	}
}

// Compute returns one margin row per (invoice, linked order) pair.
// Invoices with no linked orders produce no rows. Freight defaults to
// zero unless an override exists for the pair.
func (s *MarginService) Compute(ctx context.Context) ([]domain.MarginEntryDTO, error) {
	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	freightByPair, err := s.freightRepo.MapAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load freight overrides: %w", err)
	}

	entries := []domain.MarginEntryDTO{}
	for i := range invoices {
		invoice := &invoices[i]
		orders, err := s.orderRepo.ListLinkedByInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list linked orders: %w", err)
		}

		for j := range orders {
			order := &orders[j]
			freight := freightByPair[[2]uuid.UUID{invoice.ID, order.ID}]
			remaining := domain.RoundMoney(invoice.TotalAmount - order.TotalAmount)
			margin := domain.RoundMoney(remaining - freight)

			entries = append(entries, mapper.ToMarginEntryDTO(&domain.MarginEntry{
				ProformaInvoiceID: invoice.ID,
				ProformaNumber:    invoice.ProformaNumber,
				CustomerName:      invoice.CustomerName,
				PurchaseOrderID:   order.ID,
				OrderNumber:       order.OrderNumber,
				ProformaTotal:     invoice.TotalAmount,
				OrderTotal:        order.TotalAmount,
				RemainingAmount:   remaining,
				FreightAmount:     freight,
				MarginAmount:      margin,
			}))
		}
	}
	return entries, nil
}

// SetFreight records a freight override for an (invoice, order) pair
func (s *MarginService) SetFreight(ctx context.Context, req *domain.FreightOverrideRequest) error {
	if err := s.freightRepo.Upsert(ctx, req.ProformaInvoiceID, req.PurchaseOrderID, domain.RoundMoney(req.FreightAmount)); err != nil {
		return fmt.Errorf("failed to set freight: %w", err)
	}

	s.logger.Info("freight override set",
		zap.String("invoice_id", req.ProformaInvoiceID.String()),
		zap.String("order_id", req.PurchaseOrderID.String()),
		zap.Float64("freight_amount", req.FreightAmount),
	)
	return nil
}
