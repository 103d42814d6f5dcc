package dispatch

import (
	"context"
	"time"

	"github.com/ridebid/ridebid-backend/internal/models"
	"github.com/ridebid/ridebid-backend/internal/observability"
)

// RunSweeper cancels rides left pending beyond the configured PendingTTL.
// It blocks until ctx is done and is a no-op when PendingTTL is zero.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.pendingTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepPending(); n > 0 {
				s.logger.Info("swept stale pending rides", "cancelled", n)
			}
		}
	}
}

// SweepPending cancels every ride that has sat pending longer than the
// PendingTTL and returns how many were cancelled.
func (s *Service) SweepPending() int {
	if s.pendingTTL <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-s.pendingTTL)

	s.mu.RLock()
	entries := make([]*rideEntry, 0, len(s.rides))
	for _, entry := range s.rides {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	cancelled := 0
	for _, entry := range entries {
		entry.mu.Lock()
		// Re-check under the lock: the ride may have been accepted since
		// the registry scan.
		if entry.ride.Status != models.RideStatusPending || entry.ride.CreatedAt.After(cutoff) {
			entry.mu.Unlock()
			continue
		}
		entry.ride.Status = models.RideStatusCancelled
		snapshot := copyRide(&entry.ride)
		entry.mu.Unlock()

		cancelled++
		observability.Transitions.WithLabelValues(models.RideStatusCancelled).Inc()
		s.commit(snapshot, EventRideCancelled)
	}
	return cancelled
}
