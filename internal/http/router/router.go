package router

import (
	"encoding/json"
	"net/http"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/database"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/http/handler"
	"github.com/bora-tech/crm-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth          *handler.AuthHandler
	Customer      *handler.CustomerHandler
	Lead          *handler.LeadHandler
	Invoice       *handler.InvoiceHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Margin        *handler.MarginHandler
	Dashboard     *handler.DashboardHandler
	File          *handler.FileHandler
	GemBid        *handler.GemBidHandler
	GemOrder      *handler.GemOrderHandler
	Reminder      *handler.ReminderHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness probe including the database
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// CRM realm
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", rt.handlers.Auth.Login(domain.RealmCRM))

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireRealm(domain.RealmCRM))

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.handlers.Customer.List)
				r.Post("/", rt.handlers.Customer.Create)
				r.Post("/bulk-upload", rt.handlers.Customer.BulkUpload)
				r.Get("/template", rt.handlers.Customer.Template)
				r.Get("/{id}", rt.handlers.Customer.Get)
				r.Put("/{id}", rt.handlers.Customer.Update)
				r.Delete("/{id}", rt.handlers.Customer.Delete)
			})

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.handlers.Lead.List)
				r.Post("/", rt.handlers.Lead.Create)
				r.Post("/bulk-upload", rt.handlers.Lead.BulkUpload)
				r.Get("/template", rt.handlers.Lead.Template)
				r.Get("/{id}", rt.handlers.Lead.Get)
				r.Put("/{id}", rt.handlers.Lead.Update)
				r.Delete("/{id}", rt.handlers.Lead.Delete)
				r.Post("/{id}/convert", rt.handlers.Lead.Convert)
				r.Post("/{id}/documents/{kind}", rt.handlers.Lead.UploadDocument)
				r.Delete("/{id}/documents/{kind}", rt.handlers.Lead.DeleteDocument)
			})

			// Proforma invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.handlers.Invoice.List)
				r.Get("/{id}", rt.handlers.Invoice.Get)
				r.Put("/{id}/products", rt.handlers.Invoice.UpdateProducts)
				r.Delete("/{id}", rt.handlers.Invoice.Delete)
			})

			// Purchase orders
			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", rt.handlers.PurchaseOrder.List)
				r.Post("/", rt.handlers.PurchaseOrder.Create)
				r.Post("/bulk-upload", rt.handlers.PurchaseOrder.BulkUpload)
				r.Get("/template", rt.handlers.PurchaseOrder.Template)
				r.Get("/{id}", rt.handlers.PurchaseOrder.Get)
				r.Put("/{id}", rt.handlers.PurchaseOrder.Update)
				r.Delete("/{id}", rt.handlers.PurchaseOrder.Delete)
			})

			// Margins
			r.Get("/margins", rt.handlers.Margin.List)
			r.Put("/margins/freight", rt.handlers.Margin.SetFreight)

			// Dashboard
			r.Get("/dashboard", rt.handlers.Dashboard.KPI)

			// Stored documents
			r.Get("/files/*", rt.handlers.File.Download)
		})
	})

	// GEM BID realm
	r.Route("/api/gem", func(r chi.Router) {
		r.Post("/login", rt.handlers.Auth.Login(domain.RealmGemBid))

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireRealm(domain.RealmGemBid))

			// Bids
			r.Route("/bids", func(r chi.Router) {
				r.Get("/", rt.handlers.GemBid.List)
				r.Post("/", rt.handlers.GemBid.Create)
				r.Get("/statuses", rt.handlers.GemBid.Statuses)
				r.Get("/new", rt.handlers.GemBid.ListNew)
				r.Get("/completed", rt.handlers.GemBid.ListCompleted)
				r.Post("/bulk-upload", rt.handlers.GemBid.BulkUpload)
				r.Get("/template", rt.handlers.GemBid.Template)
				r.Get("/{id}", rt.handlers.GemBid.Get)
				r.Put("/{id}", rt.handlers.GemBid.Update)
				r.Put("/{id}/status", rt.handlers.GemBid.SetStatus)
				r.Delete("/{id}", rt.handlers.GemBid.Delete)
				r.Post("/{id}/documents", rt.handlers.GemBid.UploadDocument)
				r.Delete("/{id}/documents/{index}", rt.handlers.GemBid.DeleteDocument)
			})

			// Supply orders
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.handlers.GemOrder.List)
				r.Post("/", rt.handlers.GemOrder.Create)
				r.Get("/{id}", rt.handlers.GemOrder.Get)
				r.Put("/{id}", rt.handlers.GemOrder.Update)
				r.Delete("/{id}", rt.handlers.GemOrder.Delete)
			})

			// Reminder job
			r.Get("/reminders/status", rt.handlers.Reminder.Status)
			r.Post("/reminders/run", rt.handlers.Reminder.Trigger)

			// Stored documents
			r.Get("/files/*", rt.handlers.File.Download)
		})
	})

	return r
}
