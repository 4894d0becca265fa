package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bora-tech/crm-api/internal/domain"
	"go.uber.org/zap"
)

// BidReminderJobName is the name of the daily bid deadline reminder job
const BidReminderJobName = "bid_reminder"

// BidStore provides the bids the reminder scan needs. The interface
// keeps the job decoupled from the repository package.
type BidStore interface {
	// ListEndingBetween returns bids whose end date falls in [from, to)
	ListEndingBetween(ctx context.Context, from, to time.Time) ([]domain.GemBid, error)
	Update(ctx context.Context, bid *domain.GemBid) error
}

// ReminderMailer sends the reminder message
type ReminderMailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// ReminderRunSummary reports one reminder scan
type ReminderRunSummary struct {
	Matched int
	Sent    int
	Skipped int
	Failed  int
	RanAt   time.Time
}

// BidReminderJob scans for bids ending tomorrow and emails a reminder
// for each, at most once per bid.
type BidReminderJob struct {
	bids    BidStore
	mailer  ReminderMailer
	to      string
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	lastRun *ReminderRunSummary
}

func NewBidReminderJob(bids BidStore, mailer ReminderMailer, to string, logger *zap.Logger, timeout time.Duration) *BidReminderJob {
	return &BidReminderJob{
		bids:    bids,
		mailer:  mailer,
		to:      to,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one reminder scan. Called by the scheduler according to
// the cron expression, and once at startup when configured.
func (j *BidReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunScan(ctx); err != nil {
		j.logger.Error("bid reminder scan failed", zap.Error(err))
	}
}

// RunScan finds bids whose end date falls on tomorrow's calendar day
// (UTC) and sends one reminder per bid. A bid already flagged as
// reminded is skipped; the flag is set only after a successful send, so
// a failed delivery is retried on the next scan.
func (j *BidReminderJob) RunScan(ctx context.Context) (*ReminderRunSummary, error) {
	start := time.Now()
	from := start.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	bids, err := j.bids.ListEndingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bids: %w", err)
	}

	summary := &ReminderRunSummary{
		Matched: len(bids),
		RanAt:   start.UTC(),
	}

	for i := range bids {
		bid := &bids[i]
		if bid.ReminderSent {
			summary.Skipped++
			continue
		}

		if err := j.sendReminder(ctx, bid); err != nil {
			summary.Failed++
			j.logger.Error("failed to send bid reminder",
				zap.String("bid_id", bid.ID.String()),
				zap.String("bid_number", bid.BidNumber),
				zap.Error(err),
			)
			continue
		}

		now := time.Now().UTC()
		bid.ReminderSent = true
		bid.ReminderSentAt = &now
		if err := j.bids.Update(ctx, bid); err != nil {
			summary.Failed++
			j.logger.Error("failed to mark bid reminded",
				zap.String("bid_id", bid.ID.String()),
				zap.Error(err),
			)
			continue
		}
		summary.Sent++
	}

	j.mu.Lock()
	j.lastRun = summary
	j.mu.Unlock()

	j.logger.Info("bid reminder scan completed",
		zap.Int("matched", summary.Matched),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

// LastRun returns the most recent scan summary, or nil before the
// first scan.
func (j *BidReminderJob) LastRun() *ReminderRunSummary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

func (j *BidReminderJob) sendReminder(ctx context.Context, bid *domain.GemBid) error {
	endDate := "tomorrow"
	if bid.EndDate != nil {
		endDate = bid.EndDate.UTC().Format("January 02, 2006")
	}

	subject := fmt.Sprintf("Reminder: bid %s ends on %s", bid.BidNumber, endDate)
	textBody := fmt.Sprintf(
		"Bid %s (%s) ends on %s.\n\nDepartment: %s\nItem category: %s\nCity: %s\n",
		bid.BidNumber, bid.FirmName, endDate, bid.Department, bid.ItemCategory, bid.City,
	)
	htmlBody := fmt.Sprintf(
		"<p>Bid <strong>%s</strong> (%s) ends on <strong>%s</strong>.</p>"+
			"<p>Department: %s<br>Item category: %s<br>City: %s</p>",
		bid.BidNumber, bid.FirmName, endDate, bid.Department, bid.ItemCategory, bid.City,
	)

	return j.mailer.Send(ctx, j.to, subject, textBody, htmlBody)
}

// RegisterBidReminderJob registers the reminder job with the scheduler.
// When runOnStartup is true one scan fires immediately in a background
// goroutine so missed schedules are caught up after a restart.
func RegisterBidReminderJob(scheduler *Scheduler, job *BidReminderJob, cronExpr string, runOnStartup bool) error {
	if runOnStartup {
		go job.Run()
	}
	return scheduler.AddJob(BidReminderJobName, cronExpr, job.Run)
}
