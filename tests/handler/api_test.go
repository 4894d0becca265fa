package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/database"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/http/handler"
	"github.com/bora-tech/crm-api/internal/http/middleware"
	"github.com/bora-tech/crm-api/internal/http/router"
	"github.com/bora-tech/crm-api/internal/jobs"
	"github.com/bora-tech/crm-api/internal/mailer"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/internal/storage"
	"github.com/bora-tech/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupAPI wires the full HTTP surface against an in-memory store, the
// same way the main entrypoint does.
func setupAPI(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "crm-api", Environment: "test"},
		Auth:      config.AuthConfig{JWTSecret: "test-secret-key-for-tests-only", TokenTTL: 30},
		Reminder:  config.ReminderConfig{Enabled: true, CronExpr: "0 30 3 * * *", TimeoutSec: 60},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
	log := zap.NewNop()

	db := testutil.SetupTestDB(t)
	require.NoError(t, database.SeedDefaultUsers(db))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	mail, err := mailer.NewMailer(&config.MailConfig{Enabled: false}, log)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	invoiceRepo := repository.NewProformaInvoiceRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	freightRepo := repository.NewFreightOverrideRepository(db)
	bidRepo := repository.NewGemBidRepository(db)
	gemOrderRepo := repository.NewGemOrderRepository(db)

	tokens := auth.NewTokenManager(&cfg.Auth)
	invoiceService := service.NewProformaInvoiceService(invoiceRepo, leadRepo, log)
	reminderJob := jobs.NewBidReminderJob(bidRepo, mail, "alerts@bora.tech", log, time.Minute)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, log)),
		Customer:      handler.NewCustomerHandler(service.NewCustomerService(customerRepo, log)),
		Lead:          handler.NewLeadHandler(service.NewLeadService(leadRepo, customerRepo, store, log), invoiceService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(service.NewPurchaseOrderService(orderRepo, invoiceRepo, log)),
		Margin:        handler.NewMarginHandler(service.NewMarginService(invoiceRepo, orderRepo, freightRepo, log)),
		Dashboard:     handler.NewDashboardHandler(service.NewDashboardService(customerRepo, leadRepo, invoiceRepo, orderRepo)),
		File:          handler.NewFileHandler(store, log),
		GemBid:        handler.NewGemBidHandler(service.NewGemBidService(bidRepo, store, log)),
		GemOrder:      handler.NewGemOrderHandler(service.NewGemOrderService(gemOrderRepo, log)),
		Reminder:      handler.NewReminderHandler(reminderJob, &cfg.Reminder),
	}

	rt := router.NewRouter(cfg, log, db, auth.NewMiddleware(tokens, log), middleware.NewRateLimiter(&cfg.RateLimit, log), handlers)
	return rt.Setup()
}

func doJSON(t *testing.T, api http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func login(t *testing.T, api http.Handler, path, email, password string) string {
	t.Helper()
	rec := doJSON(t, api, http.MethodPost, path, "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var resp domain.LoginResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func crmToken(t *testing.T, api http.Handler) string {
	return login(t, api, "/api/login", "sunil@bora.tech", "sunil@1202")
}

func gemToken(t *testing.T, api http.Handler) string {
	return login(t, api, "/api/gem/login", "yash.b@bora.tech", "yash@123")
}

func TestAPI_Health(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = doJSON(t, api, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAPI_Login_InvalidCredentials(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "sunil@bora.tech",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Login_ValidationError(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/login", "", map[string]string{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ProtectedRoutesRequireToken(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/api/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, api, http.MethodGet, "/api/gem/bids", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_RealmsDoNotCross(t *testing.T) {
	api := setupAPI(t)

	crm := crmToken(t, api)
	gem := gemToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/gem/bids", crm, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "CRM token must not open GEM BID routes")

	rec = doJSON(t, api, http.MethodGet, "/api/customers", gem, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "GEM BID token must not open CRM routes")
}

func TestAPI_CustomerCRUD(t *testing.T) {
	api := setupAPI(t)
	token := crmToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/customers", token, map[string]string{
		"name":  "Acme Industries",
		"email": "contact@acme.example",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.CustomerDTO
	decode(t, rec, &created)
	assert.Equal(t, "Acme Industries", created.Name)

	rec = doJSON(t, api, http.MethodGet, "/api/customers/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, api, http.MethodGet, "/api/customers?search=acme", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list domain.CustomerListDTO
	decode(t, rec, &list)
	assert.Equal(t, int64(1), list.Total)

	rec = doJSON(t, api, http.MethodDelete, "/api/customers/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, api, http.MethodGet, "/api/customers/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CustomerValidation(t *testing.T) {
	api := setupAPI(t)
	token := crmToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/customers", token, map[string]string{
		"email": "contact@acme.example",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")
}

// TestAPI_LeadToMarginPipeline walks the whole CRM flow over HTTP:
// customer, lead, conversion, linked purchase order, freight, margin
// and dashboard.
func TestAPI_LeadToMarginPipeline(t *testing.T) {
	api := setupAPI(t)
	token := crmToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/customers", token, map[string]string{"name": "Acme Industries"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var customer domain.CustomerDTO
	decode(t, rec, &customer)

	rec = doJSON(t, api, http.MethodPost, "/api/leads", token, map[string]interface{}{
		"customerId": customer.ID,
		"leadDate":   "2026-08-01",
		"products": []map[string]interface{}{
			{"productName": "Widget", "quantity": 10, "unitPrice": 100},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var lead domain.LeadDTO
	decode(t, rec, &lead)
	assert.Equal(t, 1000.0, lead.TotalAmount)

	rec = doJSON(t, api, http.MethodPost, fmt.Sprintf("/api/leads/%s/convert", lead.ID), token, map[string]string{
		"proformaNumber": "PI-2026-001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var invoice domain.ProformaInvoiceDTO
	decode(t, rec, &invoice)
	assert.Equal(t, "PI-2026-001", invoice.ProformaNumber)

	// a second conversion attempt conflicts
	rec = doJSON(t, api, http.MethodPost, fmt.Sprintf("/api/leads/%s/convert", lead.ID), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, api, http.MethodPost, "/api/purchase-orders", token, map[string]interface{}{
		"orderNumber":       "PO-001",
		"purpose":           "linked",
		"proformaInvoiceId": invoice.ID,
		"vendorName":        "Vendor Ltd",
		"products": []map[string]interface{}{
			{"productName": "Widget", "quantity": 4, "unitPrice": 150},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order domain.PurchaseOrderDTO
	decode(t, rec, &order)
	assert.Equal(t, 600.0, order.TotalAmount)

	rec = doJSON(t, api, http.MethodPut, "/api/margins/freight", token, map[string]interface{}{
		"proformaInvoiceId": invoice.ID,
		"purchaseOrderId":   order.ID,
		"freightAmount":     25,
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, api, http.MethodGet, "/api/margins", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var margins []domain.MarginEntryDTO
	decode(t, rec, &margins)
	require.Len(t, margins, 1)
	assert.Equal(t, 400.0, margins[0].RemainingAmount)
	assert.Equal(t, 375.0, margins[0].MarginAmount)

	rec = doJSON(t, api, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var kpi domain.DashboardKPIDTO
	decode(t, rec, &kpi)
	assert.Equal(t, int64(1), kpi.CustomerCount)
	assert.Equal(t, int64(0), kpi.ActiveLeadCount)
	assert.Equal(t, int64(1), kpi.InvoiceCount)
	assert.Equal(t, 400.0, kpi.MarginSummary)
}

func TestAPI_GemBidWorkflow(t *testing.T) {
	api := setupAPI(t)
	token := gemToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/gem/bids/statuses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []domain.BidStatus
	decode(t, rec, &statuses)
	assert.Len(t, statuses, 9)

	rec = doJSON(t, api, http.MethodPost, "/api/gem/bids", token, map[string]interface{}{
		"bidNumber": "GEM-001",
		"firmName":  "Bora Tech",
		"endDate":   "2026-09-15",
		"status":    "Shortlisted",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bid domain.GemBidDTO
	decode(t, rec, &bid)
	require.Len(t, bid.StatusHistory, 1)

	rec = doJSON(t, api, http.MethodPut, fmt.Sprintf("/api/gem/bids/%s/status", bid.ID), token, map[string]string{
		"status": "Bid Awarded",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &bid)
	assert.Equal(t, domain.BidStatusAwarded, bid.Status)
	require.Len(t, bid.StatusHistory, 2)

	rec = doJSON(t, api, http.MethodPut, fmt.Sprintf("/api/gem/bids/%s/status", bid.ID), token, map[string]string{
		"status": "Closed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown statuses are rejected")

	rec = doJSON(t, api, http.MethodGet, "/api/gem/bids/completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var completed []domain.GemBidDTO
	decode(t, rec, &completed)
	require.Len(t, completed, 1)

	rec = doJSON(t, api, http.MethodGet, "/api/gem/bids/new", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fresh []domain.GemBidDTO
	decode(t, rec, &fresh)
	assert.Empty(t, fresh)
}

func TestAPI_ReminderStatusAndTrigger(t *testing.T) {
	api := setupAPI(t)
	token := gemToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/gem/reminders/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.ReminderStatusDTO
	decode(t, rec, &status)
	assert.True(t, status.Enabled)
	assert.Equal(t, "0 30 3 * * *", status.CronExpr)
	assert.Nil(t, status.LastRun)

	rec = doJSON(t, api, http.MethodPost, "/api/gem/reminders/run", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary domain.ReminderRunSummaryDTO
	decode(t, rec, &summary)
	assert.Equal(t, 0, summary.Matched)

	rec = doJSON(t, api, http.MethodGet, "/api/gem/reminders/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &status)
	require.NotNil(t, status.LastRun)
}

func TestAPI_TemplateDownload(t *testing.T) {
	api := setupAPI(t)
	token := crmToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/customers/template", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"),
	)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "customers.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = doJSON(t, api, http.MethodGet, "/api/leads/template", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leads.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}
