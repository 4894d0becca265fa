package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/database"
	"github.com/bora-tech/crm-api/internal/http/handler"
	"github.com/bora-tech/crm-api/internal/http/middleware"
	"github.com/bora-tech/crm-api/internal/http/router"
	"github.com/bora-tech/crm-api/internal/jobs"
	"github.com/bora-tech/crm-api/internal/logger"
	"github.com/bora-tech/crm-api/internal/mailer"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Load full configuration with secrets.
	// In development: uses environment variables.
	// In staging/production: fetches from Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Open the primary store, falling back to the in-memory store when
	// postgres is unreachable and the fallback is enabled
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := database.SeedDefaultUsers(db); err != nil {
		return fmt.Errorf("failed to seed default users: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("storage initialized", zap.String("mode", cfg.Storage.Mode))

	mail, err := mailer.NewMailer(&cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	invoiceRepo := repository.NewProformaInvoiceRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	freightRepo := repository.NewFreightOverrideRepository(db)
	bidRepo := repository.NewGemBidRepository(db)
	gemOrderRepo := repository.NewGemOrderRepository(db)

	// Services
	tokens := auth.NewTokenManager(&cfg.Auth)
	authService := service.NewAuthService(userRepo, tokens, log)
	customerService := service.NewCustomerService(customerRepo, log)
	leadService := service.NewLeadService(leadRepo, customerRepo, fileStorage, log)
	invoiceService := service.NewProformaInvoiceService(invoiceRepo, leadRepo, log)
	orderService := service.NewPurchaseOrderService(orderRepo, invoiceRepo, log)
	marginService := service.NewMarginService(invoiceRepo, orderRepo, freightRepo, log)
	dashboardService := service.NewDashboardService(customerRepo, leadRepo, invoiceRepo, orderRepo)
	bidService := service.NewGemBidService(bidRepo, fileStorage, log)
	gemOrderService := service.NewGemOrderService(gemOrderRepo, log)

	// Background jobs
	reminderJob := jobs.NewBidReminderJob(bidRepo, mail, cfg.Mail.ToEmail, log, cfg.Reminder.TimeoutDuration())
	scheduler := jobs.NewScheduler(log)
	if cfg.Reminder.Enabled {
		if err := jobs.RegisterBidReminderJob(scheduler, reminderJob, cfg.Reminder.CronExpr, cfg.Reminder.RunOnStartup); err != nil {
			log.Error("failed to register bid reminder job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("scheduler started with bid reminder job",
				zap.String("cron_expr", cfg.Reminder.CronExpr),
				zap.Bool("run_on_startup", cfg.Reminder.RunOnStartup),
			)
		}
	} else {
		log.Info("bid reminder job disabled")
	}

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Customer:      handler.NewCustomerHandler(customerService),
		Lead:          handler.NewLeadHandler(leadService, invoiceService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Margin:        handler.NewMarginHandler(marginService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		File:          handler.NewFileHandler(fileStorage, log),
		GemBid:        handler.NewGemBidHandler(bidService),
		GemOrder:      handler.NewGemOrderHandler(gemOrderService),
		Reminder:      handler.NewReminderHandler(reminderJob, &cfg.Reminder),
	}

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		if cfg.Reminder.Enabled {
			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			log.Info("scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("server stopped gracefully")
	}

	return nil
}
