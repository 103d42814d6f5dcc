package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ridebid/ridebid-backend/internal/models"
)

// RideArchive persists ride snapshots emitted by the dispatch core. It is the
// durable side of the per-ride critical section: the core commits in memory
// first and hands the archive a finished snapshot, so a slow or failing
// database never blocks or corrupts a transition.
type RideArchive struct {
	db *gorm.DB
}

// NewRideArchive wraps a gorm connection.
func NewRideArchive(db *gorm.DB) *RideArchive {
	return &RideArchive{db: db}
}

// SaveRide upserts the ride row together with its bid ledger and chat log.
func (a *RideArchive) SaveRide(ctx context.Context, ride models.Ride) error {
	return a.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&ride).Error
}

// LoadRide fetches an archived ride with its bids and messages, for the
// admin/reporting surfaces that read history after the core forgets it.
func (a *RideArchive) LoadRide(ctx context.Context, rideID string) (models.Ride, error) {
	var ride models.Ride
	err := a.db.WithContext(ctx).
		Preload("Bids").
		Preload("Messages").
		First(&ride, "id = ?", rideID).Error
	return ride, err
}

// ListByStatus returns archived rides in a given status, newest first.
func (a *RideArchive) ListByStatus(ctx context.Context, status string, limit int) ([]models.Ride, error) {
	var rides []models.Ride
	q := a.db.WithContext(ctx).
		Preload("Bids").
		Where("status = ?", status).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rides).Error
	return rides, err
}
