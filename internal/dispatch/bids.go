package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridebid/ridebid-backend/internal/models"
	"github.com/ridebid/ridebid-backend/internal/observability"
)

// BidInput carries a driver's offer against a pending ride. A counter-bid is
// just another BidInput at a different price.
type BidInput struct {
	DriverID    string
	DriverName  string
	Vehicle     string
	Price       float64
	Rating      float64
	DriverPhone string
}

// SubmitBid appends a bid to the ride's ledger. The ledger is append-only and
// insertion-ordered; appends are legal only while the ride is pending. A bid
// racing a winning AcceptBid either lands before the acceptance (harmless,
// since it is not the chosen bid) or is rejected here with ErrRideNotOpen.
func (s *Service) SubmitBid(rideID string, input BidInput) (models.Bid, error) {
	if strings.TrimSpace(input.DriverID) == "" {
		return models.Bid{}, fmt.Errorf("%w: driverId is required", ErrInvalidInput)
	}
	if input.Price <= 0 {
		return models.Bid{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	entry, err := s.entry(rideID)
	if err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		ID:          uuid.NewString(),
		RideID:      rideID,
		DriverID:    input.DriverID,
		DriverName:  input.DriverName,
		Vehicle:     input.Vehicle,
		Price:       input.Price,
		Rating:      input.Rating,
		DriverPhone: input.DriverPhone,
		CreatedAt:   time.Now(),
	}

	entry.mu.Lock()
	if entry.ride.Status != models.RideStatusPending {
		status := entry.ride.Status
		entry.mu.Unlock()
		return models.Bid{}, fmt.Errorf("%w: ride is %s", ErrRideNotOpen, status)
	}
	entry.ride.Bids = append(entry.ride.Bids, bid)
	snapshot := copyRide(&entry.ride)
	entry.mu.Unlock()

	observability.BidsSubmitted.Inc()
	s.commit(snapshot, EventBidSubmitted)
	return bid, nil
}

// AcceptBid selects one bid as the winner. Exactly one concurrent caller can
// win this transition for a given ride; every competitor that raced in, even
// with a valid bid id, observes ErrRideNotOpen. On success the ride moves to
// accepted, the winning driver's phone is copied onto the ride, and a fresh
// pickup code is minted.
func (s *Service) AcceptBid(rideID, bidID string) (models.Bid, string, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return models.Bid{}, "", err
	}

	entry.mu.Lock()
	if entry.ride.Status != models.RideStatusPending {
		status := entry.ride.Status
		entry.mu.Unlock()
		return models.Bid{}, "", fmt.Errorf("%w: ride is %s", ErrRideNotOpen, status)
	}

	var winner *models.Bid
	for i := range entry.ride.Bids {
		if entry.ride.Bids[i].ID == bidID {
			winner = &entry.ride.Bids[i]
			break
		}
	}
	if winner == nil {
		entry.mu.Unlock()
		return models.Bid{}, "", fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
	}

	code, err := entry.otp.issue()
	if err != nil {
		entry.mu.Unlock()
		return models.Bid{}, "", fmt.Errorf("mint otp: %v", err)
	}

	accepted := bidID
	entry.ride.Status = models.RideStatusAccepted
	entry.ride.AcceptedBidID = &accepted
	entry.ride.DriverPhone = winner.DriverPhone
	won := *winner
	snapshot := copyRide(&entry.ride)
	entry.mu.Unlock()

	observability.BidsAccepted.Inc()
	observability.Transitions.WithLabelValues(models.RideStatusAccepted).Inc()
	s.commit(snapshot, EventBidAccepted)
	return won, code, nil
}
