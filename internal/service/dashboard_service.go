package service

import (
	"context"
	"fmt"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/repository"
)

// DashboardService aggregates the headline counters for the landing
// page. The margin summary sums remaining amounts over invoices that
// have at least one linked order; freight is deliberately excluded.
type DashboardService struct {
	customerRepo *repository.CustomerRepository
	leadRepo     *repository.LeadRepository
	invoiceRepo  *repository.ProformaInvoiceRepository
	orderRepo    *repository.PurchaseOrderRepository
}

func NewDashboardService(
	customerRepo *repository.CustomerRepository,
	leadRepo *repository.LeadRepository,
	invoiceRepo *repository.ProformaInvoiceRepository,
	orderRepo *repository.PurchaseOrderRepository,
) *DashboardService {
	return &DashboardService{
		customerRepo: customerRepo,
		leadRepo:     leadRepo,
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
	}
}

func (s *DashboardService) KPI(ctx context.Context) (*domain.DashboardKPIDTO, error) {
	customerCount, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	activeLeadCount, err := s.leadRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active leads: %w", err)
	}
	invoiceCount, err := s.invoiceRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	orderCount, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	var marginSummary float64
	for i := range invoices {
		invoice := &invoices[i]
		orders, err := s.orderRepo.ListLinkedByInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list linked orders: %w", err)
		}
		for j := range orders {
			marginSummary += domain.RoundMoney(invoice.TotalAmount - orders[j].TotalAmount)
		}
	}

	return &domain.DashboardKPIDTO{
		CustomerCount:   customerCount,
		ActiveLeadCount: activeLeadCount,
		InvoiceCount:    invoiceCount,
		OrderCount:      orderCount,
		MarginSummary:   domain.RoundMoney(marginSummary),
	}, nil
}
