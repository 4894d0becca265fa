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

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CustomerRequest) (*domain.CustomerDTO, error) {
	customer := &domain.Customer{
		Name:          req.Name,
		ReferenceName: req.ReferenceName,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("name", customer.Name),
	)

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.CustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	customer.Name = req.Name
	customer.ReferenceName = req.ReferenceName
	customer.ContactNumber = req.ContactNumber
	customer.Email = req.Email

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// Delete removes a customer. Leads referencing it are left in place;
// no cascade is enforced.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) (*domain.CustomerListDTO, error) {
	customers, total, err := s.customerRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	items := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		items[i] = mapper.ToCustomerDTO(&customers[i])
	}
	return &domain.CustomerListDTO{Items: items, Total: total}, nil
}

// BulkCreate inserts one customer per imported spreadsheet row.
// Rows whose name already exists are skipped, not errors.
func (s *CustomerService) BulkCreate(ctx context.Context, reqs []domain.CustomerRequest) (*domain.BulkUploadResultDTO, error) {
	result := &domain.BulkUploadResultDTO{}

	for i, req := range reqs {
		if req.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing customer name", i+2))
			continue
		}

		if _, err := s.customerRepo.GetByName(ctx, req.Name); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check existing customer: %w", err)
		}

		customer := &domain.Customer{
			Name:          req.Name,
			ReferenceName: req.ReferenceName,
			ContactNumber: req.ContactNumber,
			Email:         req.Email,
		}
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Created++
	}

	s.logger.Info("customer bulk upload completed",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}
