package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns an isolated in-memory database. A single connection
// keeps transaction interleaving deterministic.
func openTestDB(t *testing.T, name string, schema ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", t.Name(), name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(schema...))
	return db
}

// newPrimaryDB models the Postgres store: resources, reservations, ledger.
func newPrimaryDB(t *testing.T) *gorm.DB {
	return openTestDB(t, "primary", &models.Resource{}, &models.Reservation{}, &models.LedgerEntry{})
}

// newMirrorDB models the independently-scaled MySQL store.
func newMirrorDB(t *testing.T) *gorm.DB {
	return openTestDB(t, "mirror", &models.PointsAccount{})
}

const testGrace = 5 * time.Minute

func newBookingFixture(t *testing.T) (BookingService, AvailabilityService, *gorm.DB) {
	db := newPrimaryDB(t)
	resourceRepo := repository.NewResourceRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	booking := NewBookingService(reservationRepo, resourceRepo, nil, testGrace, 5)
	availability := NewAvailabilityService(resourceRepo, reservationRepo, testGrace)
	return booking, availability, db
}

func createResource(t *testing.T, db *gorm.DB, vertical models.Vertical, maxUnits, bufferMinutes int) *models.Resource {
	t.Helper()
	resource := &models.Resource{
		PartnerID:     1,
		Vertical:      vertical,
		Name:          fmt.Sprintf("%s resource", vertical),
		IsActive:      true,
		MaxUnits:      maxUnits,
		BufferMinutes: bufferMinutes,
	}
	require.NoError(t, db.Create(resource).Error)
	return resource
}

// backdate rewrites a reservation's created_at, pushing a pending row past
// the grace window.
func backdate(t *testing.T, db *gorm.DB, id uint, to time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("created_at", to).Error)
}

func date(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}
