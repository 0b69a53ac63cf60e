package database

import (
	"context"
	"log"
	"time"

	"github.com/tripmall/booking-core/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB opens the primary store: resources, reservations and the
// points ledger all live here.
func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to primary database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access primary connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		log.Fatalf("failed to ping primary database: %v", err)
	}

	if err := db.AutoMigrate(&models.Resource{}, &models.Reservation{}, &models.LedgerEntry{}); err != nil {
		log.Fatalf("failed to auto-migrate primary database: %v", err)
	}

	return db
}
