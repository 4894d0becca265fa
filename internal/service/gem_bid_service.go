package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/mapper"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GemBidService manages GEM tender bids: their workflow status with its
// audit trail, attached documents, and the new/completed views.
type GemBidService struct {
	bidRepo *repository.GemBidRepository
	store   storage.Storage
	logger  *zap.Logger
}

func NewGemBidService(bidRepo *repository.GemBidRepository, store storage.Storage, logger *zap.Logger) *GemBidService {
	return &GemBidService{
		bidRepo: bidRepo,
		store:   store,
		logger:  logger,
	}
}

// Statuses returns the full workflow status list in display order
func (s *GemBidService) Statuses() []domain.BidStatus {
	return domain.AllBidStatuses()
}

func (s *GemBidService) Create(ctx context.Context, req *domain.GemBidRequest) (*domain.GemBidDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown bid status %q", ErrInvalidInput, req.Status)
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	bid := &domain.GemBid{
		FirmName:     req.FirmName,
		BidNumber:    req.BidNumber,
		Details:      req.Details,
		StartDate:    startDate,
		EndDate:      endDate,
		EMDAmount:    req.EMDAmount,
		Quantity:     req.Quantity,
		City:         req.City,
		Department:   req.Department,
		ItemCategory: req.ItemCategory,
		EPBGPercent:  req.EPBGPercent,
		EPBGMonths:   req.EPBGMonths,
		Status:       req.Status,
		StatusHistory: domain.StatusHistory{
			{Status: req.Status, ChangedAt: time.Now().UTC()},
		},
		Documents: domain.BidDocuments{},
	}

	if err := s.bidRepo.Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	s.logger.Info("gem bid created",
		zap.String("bid_id", bid.ID.String()),
		zap.String("bid_number", bid.BidNumber),
		zap.String("status", string(bid.Status)),
	)

	dto := mapper.ToGemBidDTO(bid)
	return &dto, nil
}

func (s *GemBidService) GetByID(ctx context.Context, id uuid.UUID) (*domain.GemBidDTO, error) {
	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToGemBidDTO(bid)
	return &dto, nil
}

// Update replaces a bid's fields. A status change through this path is
// recorded in the history exactly as one through SetStatus; an update
// that keeps the status leaves the history untouched.
func (s *GemBidService) Update(ctx context.Context, id uuid.UUID, req *domain.GemBidRequest) (*domain.GemBidDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown bid status %q", ErrInvalidInput, req.Status)
	}

	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	bid.FirmName = req.FirmName
	bid.BidNumber = req.BidNumber
	bid.Details = req.Details
	bid.StartDate = startDate
	bid.EndDate = endDate
	bid.EMDAmount = req.EMDAmount
	bid.Quantity = req.Quantity
	bid.City = req.City
	bid.Department = req.Department
	bid.ItemCategory = req.ItemCategory
	bid.EPBGPercent = req.EPBGPercent
	bid.EPBGMonths = req.EPBGMonths

	if bid.Status != req.Status {
		bid.Status = req.Status
		bid.StatusHistory = append(bid.StatusHistory, domain.StatusChange{
			Status:    req.Status,
			ChangedAt: time.Now().UTC(),
		})
	}

	if err := s.bidRepo.Update(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to update bid: %w", err)
	}

	dto := mapper.ToGemBidDTO(bid)
	return &dto, nil
}

// SetStatus moves a bid to a new workflow status. Setting the current
// status again is a no-op and does not grow the history.
func (s *GemBidService) SetStatus(ctx context.Context, id uuid.UUID, status domain.BidStatus) (*domain.GemBidDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown bid status %q", ErrInvalidInput, status)
	}

	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}

	if bid.Status != status {
		bid.Status = status
		bid.StatusHistory = append(bid.StatusHistory, domain.StatusChange{
			Status:    status,
			ChangedAt: time.Now().UTC(),
		})
		if err := s.bidRepo.Update(ctx, bid); err != nil {
			return nil, fmt.Errorf("failed to set bid status: %w", err)
		}

		s.logger.Info("gem bid status changed",
			zap.String("bid_id", id.String()),
			zap.String("status", string(status)),
		)
	}

	dto := mapper.ToGemBidDTO(bid)
	return &dto, nil
}

func (s *GemBidService) Delete(ctx context.Context, id uuid.UUID) error {
	bid, err := s.getBid(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bidRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete bid: %w", err)
	}

	for _, doc := range bid.Documents {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			s.logger.Warn("failed to delete bid document blob",
				zap.String("storage_path", doc.StoragePath),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *GemBidService) List(ctx context.Context, page, pageSize int, search string) ([]domain.GemBidDTO, int64, error) {
	bids, total, err := s.bidRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bids: %w", err)
	}
	return toBidDTOs(bids), total, nil
}

// ListNew returns bids still in flight: every bid whose status is
// outside the completed set.
func (s *GemBidService) ListNew(ctx context.Context) ([]domain.GemBidDTO, error) {
	bids, err := s.bidRepo.ListNew(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list new bids: %w", err)
	}
	return toBidDTOs(bids), nil
}

// ListCompleted returns bids that reached a completed status
func (s *GemBidService) ListCompleted(ctx context.Context) ([]domain.GemBidDTO, error) {
	bids, err := s.bidRepo.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed bids: %w", err)
	}
	return toBidDTOs(bids), nil
}

// AttachDocument stores a file and appends it to the bid's document
// list. Multiple documents per bid are allowed.
func (s *GemBidService) AttachDocument(ctx context.Context, id uuid.UUID, filename, contentType string, size int64, data io.Reader) (*domain.GemBidDTO, error) {
	if !domain.IsAllowedDocument(filename) {
		return nil, fmt.Errorf("%w: file type not allowed, expected one of %v", ErrInvalidInput, domain.AllowedDocumentExtensions())
	}
	if size > domain.MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d MB limit", ErrInvalidInput, domain.MaxUploadSize>>20)
	}

	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}

	storagePath, _, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	bid.Documents = append(bid.Documents, domain.BidDocument{
		Filename:    filename,
		StoragePath: storagePath,
		UploadedAt:  time.Now().UTC(),
	})

	if err := s.bidRepo.Update(ctx, bid); err != nil {
		// best effort: don't leave the new blob orphaned
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned document", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}

	s.logger.Info("gem bid document attached",
		zap.String("bid_id", id.String()),
		zap.String("filename", filename),
	)

	dto := mapper.ToGemBidDTO(bid)
	return &dto, nil
}

// RemoveDocument detaches the document at the given position and
// deletes its blob.
func (s *GemBidService) RemoveDocument(ctx context.Context, id uuid.UUID, index int) (*domain.GemBidDTO, error) {
	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(bid.Documents) {
		return nil, fmt.Errorf("%w: bid %s has no document at position %d", ErrNotFound, id, index)
	}

	removed := bid.Documents[index]
	bid.Documents = append(bid.Documents[:index], bid.Documents[index+1:]...)

	if err := s.bidRepo.Update(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to detach document: %w", err)
	}

	if err := s.store.Delete(ctx, removed.StoragePath); err != nil {
		s.logger.Warn("failed to delete bid document blob",
			zap.String("storage_path", removed.StoragePath),
			zap.Error(err),
		)
	}

	dto := mapper.ToGemBidDTO(bid)
	return &dto, nil
}

// BulkCreate inserts one bid per imported spreadsheet row. Rows whose
// status cell is empty default to Shortlisted.
func (s *GemBidService) BulkCreate(ctx context.Context, reqs []domain.GemBidRequest) (*domain.BulkUploadResultDTO, error) {
	result := &domain.BulkUploadResultDTO{}

	for i, req := range reqs {
		if req.BidNumber == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing bid number", i+2))
			continue
		}
		if req.Status == "" {
			req.Status = domain.BidStatusShortlisted
		}
		if _, err := s.Create(ctx, &req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Created++
	}

	s.logger.Info("gem bid bulk upload completed",
		zap.Int("created", result.Created),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *GemBidService) getBid(ctx context.Context, id uuid.UUID) (*domain.GemBid, error) {
	bid, err := s.bidRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bid %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

func toBidDTOs(bids []domain.GemBid) []domain.GemBidDTO {
	dtos := make([]domain.GemBidDTO, len(bids))
	for i := range bids {
		dtos[i] = mapper.ToGemBidDTO(&bids[i])
	}
	return dtos
}
