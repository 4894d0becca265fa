package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GemBidRepository struct {
	db *gorm.DB
}

func NewGemBidRepository(db *gorm.DB) *GemBidRepository {
	return &GemBidRepository{db: db}
}

func (r *GemBidRepository) Create(ctx context.Context, bid *domain.GemBid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *GemBidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GemBid, error) {
	var bid domain.GemBid
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bid).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *GemBidRepository) Update(ctx context.Context, bid *domain.GemBid) error {
	return r.db.WithContext(ctx).Save(bid).Error
}

func (r *GemBidRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.GemBid{}, "id = ?", id).Error
}

func (r *GemBidRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.GemBid, int64, error) {
	var bids []domain.GemBid
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.GemBid{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(bid_number) LIKE ? OR LOWER(firm_name) LIKE ? OR LOWER(department) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&bids).Error

	return bids, total, err
}

// ListNew returns bids whose status is outside the terminal set,
// newest first. Together with ListCompleted it partitions all bids.
func (r *GemBidRepository) ListNew(ctx context.Context) ([]domain.GemBid, error) {
	var bids []domain.GemBid
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", completedStatusStrings()).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, err
}

// ListCompleted returns bids whose status is in the terminal set,
// newest first.
func (r *GemBidRepository) ListCompleted(ctx context.Context) ([]domain.GemBid, error) {
	var bids []domain.GemBid
	err := r.db.WithContext(ctx).
		Where("status IN ?", completedStatusStrings()).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, err
}

// ListEndingBetween returns bids whose end date falls in [from, to).
// The reminder scan passes the full calendar day of tomorrow.
func (r *GemBidRepository) ListEndingBetween(ctx context.Context, from, to time.Time) ([]domain.GemBid, error) {
	var bids []domain.GemBid
	err := r.db.WithContext(ctx).
		Where("end_date >= ? AND end_date < ?", from, to).
		Order("end_date ASC").
		Find(&bids).Error
	return bids, err
}

func completedStatusStrings() []string {
	completed := domain.CompletedBidStatuses()
	out := make([]string, len(completed))
	for i, s := range completed {
		out[i] = string(s)
	}
	return out
}
