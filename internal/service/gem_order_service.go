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

// GemOrderService tracks supply orders received against GEM bids.
// Orders reference bids by bid number only; no foreign key is enforced.
type GemOrderService struct {
	orderRepo *repository.GemOrderRepository
	logger    *zap.Logger
}

func NewGemOrderService(orderRepo *repository.GemOrderRepository, logger *zap.Logger) *GemOrderService {
	return &GemOrderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

func (s *GemOrderService) Create(ctx context.Context, req *domain.GemOrderRequest) (*domain.GemOrderDTO, error) {
	items, err := buildGemOrderItems(req.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.GemOrder{
		BidNumber: req.BidNumber,
		Items:     items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create gem order: %w", err)
	}

	s.logger.Info("gem order created",
		zap.String("order_id", order.ID.String()),
		zap.String("bid_number", order.BidNumber),
		zap.Int("items", len(order.Items)),
	)

	dto := mapper.ToGemOrderDTO(order)
	return &dto, nil
}

func (s *GemOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.GemOrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToGemOrderDTO(order)
	return &dto, nil
}

func (s *GemOrderService) Update(ctx context.Context, id uuid.UUID, req *domain.GemOrderRequest) (*domain.GemOrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := buildGemOrderItems(req.Items)
	if err != nil {
		return nil, err
	}

	order.BidNumber = req.BidNumber
	order.Items = items

	// the flat legacy columns are superseded once the item array exists
	order.LegacySKU = nil
	order.LegacyVendor = nil
	order.LegacyPrice = nil
	order.LegacyQuantity = nil
	order.LegacyInvoiceValue = nil
	order.LegacyAdvancePaid = nil

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update gem order: %w", err)
	}

	dto := mapper.ToGemOrderDTO(order)
	return &dto, nil
}

func (s *GemOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOrder(ctx, id); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete gem order: %w", err)
	}
	return nil
}

func (s *GemOrderService) List(ctx context.Context, page, pageSize int, search string) ([]domain.GemOrderDTO, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gem orders: %w", err)
	}

	dtos := make([]domain.GemOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToGemOrderDTO(&orders[i])
	}
	return dtos, total, nil
}

func (s *GemOrderService) getOrder(ctx context.Context, id uuid.UUID) (*domain.GemOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gem order %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get gem order: %w", err)
	}
	return order, nil
}
