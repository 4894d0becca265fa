package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/mapper"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PurchaseOrderService struct {
	orderRepo   *repository.PurchaseOrderRepository
	invoiceRepo *repository.ProformaInvoiceRepository
	logger      *zap.Logger
}

func NewPurchaseOrderService(
	orderRepo *repository.PurchaseOrderRepository,
	invoiceRepo *repository.ProformaInvoiceRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

func (s *PurchaseOrderService) Create(ctx context.Context, req *domain.PurchaseOrderRequest) (*domain.PurchaseOrderDTO, error) {
	order, err := s.buildOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	s.logger.Info("purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("purpose", string(order.Purpose)),
	)

	dto := mapper.ToPurchaseOrderDTO(order)
	return &dto, nil
}

func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToPurchaseOrderDTO(order)
	return &dto, nil
}

func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req *domain.PurchaseOrderRequest) (*domain.PurchaseOrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	order.OrderNumber = updated.OrderNumber
	order.OrderDate = updated.OrderDate
	order.VendorName = updated.VendorName
	order.Purpose = updated.Purpose
	order.ProformaInvoiceID = updated.ProformaInvoiceID
	order.ProformaNumber = updated.ProformaNumber
	order.Products = updated.Products
	order.TotalAmount = updated.TotalAmount

	// the flat legacy columns are superseded once the line array exists
	order.LegacyProduct = nil
	order.LegacyCategory = nil
	order.LegacyQuantity = nil
	order.LegacyPrice = nil
	order.LegacyAmount = nil

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}

	dto := mapper.ToPurchaseOrderDTO(order)
	return &dto, nil
}

func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOrder(ctx, id); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	return nil
}

func (s *PurchaseOrderService) List(ctx context.Context, page, pageSize int, search string) ([]domain.PurchaseOrderDTO, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	dtos := make([]domain.PurchaseOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToPurchaseOrderDTO(&orders[i])
	}
	return dtos, total, nil
}

// BulkCreate inserts one purchase order per imported group of rows.
// Groups whose PO number already exists are skipped. Linked groups
// name their invoice by proforma number; naming a missing invoice is
// a group error, not a failure of the whole import.
func (s *PurchaseOrderService) BulkCreate(ctx context.Context, imports []domain.PurchaseOrderImportRequest) (*domain.BulkUploadResultDTO, error) {
	result := &domain.BulkUploadResultDTO{}

	for i, imp := range imports {
		if imp.OrderNumber == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("group %d: missing order number", i+1))
			continue
		}
		if !imp.Purpose.IsValid() {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: unknown purpose %q", imp.OrderNumber, imp.Purpose))
			continue
		}

		if _, err := s.orderRepo.GetByOrderNumber(ctx, imp.OrderNumber); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check existing order: %w", err)
		}

		req := domain.PurchaseOrderRequest{
			OrderNumber: imp.OrderNumber,
			OrderDate:   imp.OrderDate,
			VendorName:  imp.VendorName,
			Purpose:     imp.Purpose,
			Products:    imp.Products,
		}
		if imp.Purpose == domain.PurposeLinked {
			invoice, err := s.invoiceRepo.GetByProformaNumber(ctx, imp.ProformaNumber)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.Errors = append(result.Errors, fmt.Sprintf("order %s: invoice %q not found", imp.OrderNumber, imp.ProformaNumber))
					continue
				}
				return nil, fmt.Errorf("failed to resolve invoice: %w", err)
			}
			req.ProformaInvoiceID = &invoice.ID
		}

		order, err := s.buildOrder(ctx, &req)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", imp.OrderNumber, err))
			continue
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", imp.OrderNumber, err))
			continue
		}
		result.Created++
	}

	s.logger.Info("purchase order bulk upload completed",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// buildOrder validates the request against the invoice link rules and
// produces an order ready to persist. A linked order must name an
// existing invoice; its PO number is denormalized onto the order.
func (s *PurchaseOrderService) buildOrder(ctx context.Context, req *domain.PurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	orderDate, err := parseDate(req.OrderDate)
	if err != nil {
		return nil, err
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = domain.PurposeStockInSale
	}

	order := &domain.PurchaseOrder{
		OrderNumber: req.OrderNumber,
		OrderDate:   orderDate,
		VendorName:  req.VendorName,
		Purpose:     purpose,
	}

	if purpose == domain.PurposeLinked {
		if req.ProformaInvoiceID == nil {
			return nil, fmt.Errorf("%w: linked order requires a proforma invoice", ErrInvalidInput)
		}
		invoice, err := s.invoiceRepo.GetByID(ctx, *req.ProformaInvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, *req.ProformaInvoiceID)
			}
			return nil, fmt.Errorf("failed to get invoice: %w", err)
		}
		order.ProformaInvoiceID = &invoice.ID
		order.ProformaNumber = invoice.ProformaNumber
	}

	products := buildProductLines(req.Products)
	order.Products = products
	order.TotalAmount = domain.TotalAmount(products)
	return order, nil
}

func (s *PurchaseOrderService) getOrder(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purchase order %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return order, nil
}
