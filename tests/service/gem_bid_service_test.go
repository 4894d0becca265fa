package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/internal/storage"
	"github.com/bora-tech/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createBidService(t *testing.T, db *gorm.DB) *service.GemBidService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewGemBidService(repository.NewGemBidRepository(db), store, zap.NewNop())
}

func bidRequest(bidNumber string, status domain.BidStatus) *domain.GemBidRequest {
	return &domain.GemBidRequest{
		FirmName:     "Bora Tech",
		BidNumber:    bidNumber,
		Details:      "Supply of widgets",
		StartDate:    "2026-08-01",
		EndDate:      "2026-09-15",
		EMDAmount:    5000,
		Quantity:     100,
		City:         "Jaipur",
		Department:   "Railways",
		ItemCategory: "Hardware",
		Status:       status,
	}
}

func TestGemBidService_Statuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)

	statuses := svc.Statuses()
	assert.Equal(t, domain.AllBidStatuses(), statuses)
}

func TestGemBidService_Create_SeedsHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)

	bid, err := svc.Create(context.Background(), bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	assert.Equal(t, domain.BidStatusShortlisted, bid.Status)
	require.Len(t, bid.StatusHistory, 1)
	assert.Equal(t, domain.BidStatusShortlisted, bid.StatusHistory[0].Status)
	assert.False(t, bid.StatusHistory[0].ChangedAt.IsZero())
	assert.Empty(t, bid.Documents)
	assert.False(t, bid.ReminderSent)
}

func TestGemBidService_Create_RejectsUnknownStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)

	_, err := svc.Create(context.Background(), bidRequest("GEM-001", "Pending"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGemBidService_SetStatus_AppendsHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	bid, err := svc.SetStatus(ctx, created.ID, domain.BidStatusParticipated)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusParticipated, bid.Status)
	require.Len(t, bid.StatusHistory, 2)
	assert.Equal(t, domain.BidStatusParticipated, bid.StatusHistory[1].Status)
}

func TestGemBidService_SetStatus_SameStatusIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	bid, err := svc.SetStatus(ctx, created.ID, domain.BidStatusShortlisted)
	require.NoError(t, err)
	require.Len(t, bid.StatusHistory, 1, "re-setting the current status must not grow the history")

	var stored domain.GemBid
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	require.Len(t, stored.StatusHistory, 1)
}

func TestGemBidService_Update_RecordsStatusChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	// update without a status change keeps the history
	req := bidRequest("GEM-001", domain.BidStatusShortlisted)
	req.City = "Mumbai"
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	require.Len(t, updated.StatusHistory, 1)

	// update with a status change appends exactly one entry
	req = bidRequest("GEM-001", domain.BidStatusRejected)
	updated, err = svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusRejected, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
}

func TestGemBidService_NewCompletedPartition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	for i, status := range domain.AllBidStatuses() {
		_, err := svc.Create(ctx, bidRequest(string(rune('A'+i)), status))
		require.NoError(t, err)
	}

	newBids, err := svc.ListNew(ctx)
	require.NoError(t, err)
	completedBids, err := svc.ListCompleted(ctx)
	require.NoError(t, err)

	assert.Len(t, newBids, 5)
	assert.Len(t, completedBids, 4)

	for _, bid := range newBids {
		assert.False(t, bid.Status.IsCompleted(), "status %q in new view", bid.Status)
	}
	for _, bid := range completedBids {
		assert.True(t, bid.Status.IsCompleted(), "status %q in completed view", bid.Status)
	}
}

func TestGemBidService_AttachAndRemoveDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	bid, err := svc.AttachDocument(ctx, created.ID, "tender.pdf", "application/pdf", 10, bytes.NewReader([]byte("tender doc")))
	require.NoError(t, err)
	require.Len(t, bid.Documents, 1)
	assert.Equal(t, "tender.pdf", bid.Documents[0].Filename)
	assert.NotEmpty(t, bid.Documents[0].StoragePath)

	bid, err = svc.AttachDocument(ctx, created.ID, "sheet.xlsx", "application/octet-stream", 5, bytes.NewReader([]byte("sheet")))
	require.NoError(t, err)
	require.Len(t, bid.Documents, 2)

	bid, err = svc.RemoveDocument(ctx, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, bid.Documents, 1)
	assert.Equal(t, "sheet.xlsx", bid.Documents[0].Filename)

	_, err = svc.RemoveDocument(ctx, created.ID, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGemBidService_AttachDocument_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	_, err = svc.AttachDocument(ctx, created.ID, "photo.jpg", "image/jpeg", 10, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.AttachDocument(ctx, created.ID, "big.pdf", "application/pdf", domain.MaxUploadSize+1, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGemBidService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, bidRequest("GEM-001", domain.BidStatusShortlisted))
	require.NoError(t, err)

	_, err = svc.AttachDocument(ctx, created.ID, "tender.pdf", "application/pdf", 10, bytes.NewReader([]byte("tender doc")))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGemBidService_BulkCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createBidService(t, db)

	result, err := svc.BulkCreate(context.Background(), []domain.GemBidRequest{
		*bidRequest("GEM-001", domain.BidStatusParticipated),
		{FirmName: "No Number"},
		{BidNumber: "GEM-002"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 3")

	// an empty status cell defaults to the workflow's starting status
	bids, _, err := svc.List(context.Background(), 1, 50, "gem-002")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, domain.BidStatusShortlisted, bids[0].Status)
}
