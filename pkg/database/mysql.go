package database

import (
	"context"
	"log"
	"time"

	"github.com/tripmall/booking-core/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMySQLDB opens the mirror store holding the denormalized points
// accounts. It scales independently of the primary store; no transaction
// ever spans the two.
func NewMySQLDB(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to mirror database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access mirror connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		log.Fatalf("failed to ping mirror database: %v", err)
	}

	if err := db.AutoMigrate(&models.PointsAccount{}); err != nil {
		log.Fatalf("failed to auto-migrate mirror database: %v", err)
	}

	return db
}
