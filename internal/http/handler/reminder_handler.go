package handler

import (
	"net/http"
	"time"

	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/jobs"
)

// ReminderHandler exposes the bid reminder job over HTTP: a status
// view and a manual trigger for operators.
type ReminderHandler struct {
	job *jobs.BidReminderJob
	cfg *config.ReminderConfig
}

func NewReminderHandler(job *jobs.BidReminderJob, cfg *config.ReminderConfig) *ReminderHandler {
	return &ReminderHandler{job: job, cfg: cfg}
}

// Status handles GET /api/gem/reminders/status
func (h *ReminderHandler) Status(w http.ResponseWriter, r *http.Request) {
	dto := domain.ReminderStatusDTO{
		Enabled:  h.cfg.Enabled,
		CronExpr: h.cfg.CronExpr,
	}
	if last := h.job.LastRun(); last != nil {
		dto.LastRun = toRunSummaryDTO(last)
	}
	respondJSON(w, http.StatusOK, dto)
}

// Trigger handles POST /api/gem/reminders/run and executes one scan
// synchronously.
func (h *ReminderHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	summary, err := h.job.RunScan(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Reminder scan failed")
		return
	}
	respondJSON(w, http.StatusOK, toRunSummaryDTO(summary))
}

func toRunSummaryDTO(s *jobs.ReminderRunSummary) *domain.ReminderRunSummaryDTO {
	return &domain.ReminderRunSummaryDTO{
		Matched: s.Matched,
		Sent:    s.Sent,
		Skipped: s.Skipped,
		Failed:  s.Failed,
		RanAt:   s.RanAt.UTC().Format(time.RFC3339),
	}
}
