package database

import (
	"fmt"
	"time"

	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the primary postgres store. When the startup health
// check fails and the fallback is enabled, it opens an in-memory sqlite
// store behind the same *gorm.DB handle instead, so the rest of the
// application never branches on the store kind. Data in the fallback
// store does not survive a restart.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := openPostgres(cfg)
	if err == nil {
		log.Info("connected to postgres",
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name),
		)
		return db, nil
	}

	if !cfg.FallbackInMemory {
		return nil, err
	}

	log.Warn("primary database unreachable, falling back to in-memory store",
		zap.Error(err),
	)

	mem, memErr := openInMemory()
	if memErr != nil {
		return nil, fmt.Errorf("failed to open in-memory fallback store: %w", memErr)
	}
	return mem, nil
}

func openPostgres(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ConnectionString()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	// Startup health check
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func openInMemory() (*gorm.DB, error) {
	// shared cache keeps all pooled connections on one database
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection avoids sqlite write contention
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate creates or updates the schema. It is the single schema
// path so the in-memory fallback store gets the same shape as postgres.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Customer{},
		&domain.Lead{},
		&domain.ProformaInvoice{},
		&domain.PurchaseOrder{},
		&domain.FreightOverride{},
		&domain.GemBid{},
		&domain.GemOrder{},
	)
}

// HealthCheck pings the underlying store. Used by the readiness probe.
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Ping()
}

// SeedDefaultUsers inserts the two default realm users if they are
// absent. Logins still work against these even on a fresh store.
func SeedDefaultUsers(db *gorm.DB) error {
	defaults := []domain.User{
		{Email: "sunil@bora.tech", Password: "sunil@1202", Name: "Sunil Bora", Realm: domain.RealmCRM},
		{Email: "yash.b@bora.tech", Password: "yash@123", Name: "Yash Bora", Realm: domain.RealmGemBid},
	}

	for _, u := range defaults {
		var count int64
		if err := db.Model(&domain.User{}).
			Where("email = ? AND realm = ?", u.Email, u.Realm).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check default user %s: %w", u.Email, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed default user %s: %w", u.Email, err)
		}
	}
	return nil
}
