package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ridebid/ridebid-backend/internal/models"
	"github.com/ridebid/ridebid-backend/internal/observability"
	"github.com/ridebid/ridebid-backend/pkg/utils"
)

// Notifier receives ride lifecycle events so a push transport (websocket hub,
// redis pub/sub) can fan them out. Implementations must not block; the core
// calls them outside the per-ride critical section with a private copy.
type Notifier interface {
	RideUpdated(ride models.Ride, event string)
}

// Archiver persists a snapshot of a ride after each committed mutation.
// Persistence is write-behind: an archive failure is logged, never surfaced
// to the caller, and never rolls back the in-memory transition.
type Archiver interface {
	SaveRide(ctx context.Context, ride models.Ride) error
}

// Ride lifecycle event names published through the Notifier.
const (
	EventRideCreated   = "ride_created"
	EventBidSubmitted  = "bid_submitted"
	EventBidAccepted   = "bid_accepted"
	EventDriverArrived = "driver_arrived"
	EventRideStarted   = "ride_started"
	EventRideCompleted = "ride_completed"
	EventRideCancelled = "ride_cancelled"
)

// Options tunes the dispatch service. Zero values fall back to defaults.
type Options struct {
	// OTPTTL is how long a pickup code stays valid after it is minted.
	OTPTTL time.Duration
	// OTPMaxAttempts bounds failed verification attempts per code.
	OTPMaxAttempts int
	// PendingTTL is how long a ride may sit pending before the sweeper
	// cancels it. Zero disables the sweep.
	PendingTTL time.Duration

	Archiver Archiver
	Notifier Notifier
	Logger   *slog.Logger
}

const (
	defaultOTPTTL         = 10 * time.Minute
	defaultOTPMaxAttempts = 5
)

// Service owns every ride's lifecycle: it validates each transition request
// against the ride's current status and applies it atomically. All
// read-then-write sequences on one ride run under that ride's entry lock, so
// racing transitions serialize per ride while unrelated rides proceed in
// parallel.
type Service struct {
	mu    sync.RWMutex
	rides map[string]*rideEntry

	archive  Archiver
	notifier Notifier
	logger   *slog.Logger

	otpTTL         time.Duration
	otpMaxAttempts int
	pendingTTL     time.Duration
}

type rideEntry struct {
	mu   sync.Mutex
	ride models.Ride
	otp  otpState
	loc  *DriverLocation
}

// NewService builds a dispatch service from opts.
func NewService(opts Options) *Service {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.OTPMaxAttempts <= 0 {
		opts.OTPMaxAttempts = defaultOTPMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		rides:          make(map[string]*rideEntry),
		archive:        opts.Archiver,
		notifier:       opts.Notifier,
		logger:         opts.Logger,
		otpTTL:         opts.OTPTTL,
		otpMaxAttempts: opts.OTPMaxAttempts,
		pendingTTL:     opts.PendingTTL,
	}
}

// CreateRideInput carries the rider's itinerary and offer.
type CreateRideInput struct {
	PickupLat  float64
	PickupLng  float64
	PickupAddr string
	DestLat    float64
	DestLng    float64
	DestAddr   string

	DistanceKm   float64
	TrafficDelay int
	VehicleType  string
	UserPrice    float64
	RiderPhone   string
}

// CreateRide allocates a new ride in status pending and returns a snapshot.
func (s *Service) CreateRide(input CreateRideInput) (models.Ride, error) {
	if err := validateCoordinate(input.PickupLat, input.PickupLng); err != nil {
		return models.Ride{}, fmt.Errorf("pickup: %w", err)
	}
	if err := validateCoordinate(input.DestLat, input.DestLng); err != nil {
		return models.Ride{}, fmt.Errorf("drop: %w", err)
	}

	distance := input.DistanceKm
	if distance <= 0 {
		distance = utils.HaversineDistance(input.PickupLat, input.PickupLng, input.DestLat, input.DestLng)
	}
	delay := input.TrafficDelay
	if delay <= 0 {
		delay = utils.CalculateETA(distance, 30)
	}

	ride := models.Ride{
		ID:           uuid.NewString(),
		Status:       models.RideStatusPending,
		PickupLat:    input.PickupLat,
		PickupLng:    input.PickupLng,
		PickupAddr:   input.PickupAddr,
		DestLat:      input.DestLat,
		DestLng:      input.DestLng,
		DestAddr:     input.DestAddr,
		DistanceKm:   distance,
		TrafficDelay: delay,
		VehicleType:  input.VehicleType,
		UserPrice:    input.UserPrice,
		RiderPhone:   input.RiderPhone,
		CreatedAt:    time.Now(),
		Bids:         []models.Bid{},
	}

	s.mu.Lock()
	s.rides[ride.ID] = &rideEntry{ride: ride}
	s.mu.Unlock()

	observability.RidesCreated.Inc()
	snapshot := copyRide(&ride)
	s.commit(snapshot, EventRideCreated)
	return snapshot, nil
}

// GetRide returns a snapshot of the ride, including its full bid ledger.
func (s *Service) GetRide(rideID string) (models.Ride, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return models.Ride{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return copyRide(&entry.ride), nil
}

// ListPending returns snapshots of every ride still open for bidding,
// oldest first.
func (s *Service) ListPending() []models.Ride {
	s.mu.RLock()
	entries := make([]*rideEntry, 0, len(s.rides))
	for _, entry := range s.rides {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	pending := make([]models.Ride, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.ride.Status == models.RideStatusPending {
			pending = append(pending, copyRide(&entry.ride))
		}
		entry.mu.Unlock()
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending
}

// MarkDriverArrived moves an accepted ride to driver_arrived.
func (s *Service) MarkDriverArrived(rideID string) (models.Ride, error) {
	return s.transition(rideID, models.RideStatusAccepted, models.RideStatusArrived, EventDriverArrived)
}

// CompleteRide moves a started ride to completed, the terminal state.
func (s *Service) CompleteRide(rideID string) (models.Ride, error) {
	return s.transition(rideID, models.RideStatusStarted, models.RideStatusCompleted, EventRideCompleted)
}

// Decline cancels a ride that is still pending. Cancellation is the only
// other terminal edge in the state graph and exists solely from pending.
func (s *Service) Decline(rideID string) (models.Ride, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return models.Ride{}, err
	}

	entry.mu.Lock()
	if entry.ride.Status != models.RideStatusPending {
		status := entry.ride.Status
		entry.mu.Unlock()
		return models.Ride{}, fmt.Errorf("%w: ride is %s", ErrRideNotOpen, status)
	}
	entry.ride.Status = models.RideStatusCancelled
	snapshot := copyRide(&entry.ride)
	entry.mu.Unlock()

	observability.Transitions.WithLabelValues(models.RideStatusCancelled).Inc()
	s.commit(snapshot, EventRideCancelled)
	return snapshot, nil
}

// StartRide verifies the pickup code and moves the ride from driver_arrived
// to ride_started. A mismatched code burns one attempt and leaves the status
// unchanged; an expired or exhausted code requires the rider to reissue.
func (s *Service) StartRide(rideID, suppliedOTP string) (models.Ride, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return models.Ride{}, err
	}

	entry.mu.Lock()
	if entry.ride.Status != models.RideStatusArrived {
		status := entry.ride.Status
		entry.mu.Unlock()
		return models.Ride{}, fmt.Errorf("%w: ride is %s, want %s", ErrInvalidTransition, status, models.RideStatusArrived)
	}
	if err := entry.otp.verify(suppliedOTP, s.otpTTL, s.otpMaxAttempts); err != nil {
		entry.mu.Unlock()
		observability.OTPFailures.Inc()
		return models.Ride{}, err
	}
	entry.ride.Status = models.RideStatusStarted
	snapshot := copyRide(&entry.ride)
	entry.mu.Unlock()

	observability.Transitions.WithLabelValues(models.RideStatusStarted).Inc()
	s.commit(snapshot, EventRideStarted)
	return snapshot, nil
}

// transition applies the single legal edge from one status to the next under
// the ride's entry lock.
func (s *Service) transition(rideID, from, to, event string) (models.Ride, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return models.Ride{}, err
	}

	entry.mu.Lock()
	if entry.ride.Status != from {
		status := entry.ride.Status
		entry.mu.Unlock()
		return models.Ride{}, fmt.Errorf("%w: ride is %s, want %s", ErrInvalidTransition, status, from)
	}
	entry.ride.Status = to
	snapshot := copyRide(&entry.ride)
	entry.mu.Unlock()

	observability.Transitions.WithLabelValues(to).Inc()
	s.commit(snapshot, event)
	return snapshot, nil
}

func (s *Service) entry(rideID string) (*rideEntry, error) {
	s.mu.RLock()
	entry, ok := s.rides[rideID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRideNotFound, rideID)
	}
	return entry, nil
}

// commit runs the write-behind persistence hook and event fanout with a
// snapshot that is private to this call. Both run outside the ride lock.
func (s *Service) commit(snapshot models.Ride, event string) {
	s.persistSnapshot(snapshot)
	if s.notifier != nil {
		s.notifier.RideUpdated(snapshot, event)
	}
}

func (s *Service) persistSnapshot(snapshot models.Ride) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveRide(context.Background(), snapshot); err != nil {
		s.logger.Error("ride archive failed", "rideId", snapshot.ID, "error", err)
	}
}

func validateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, lng)
	}
	return nil
}

// copyRide deep-copies a ride so snapshots never alias the slices mutated
// under the entry lock.
func copyRide(r *models.Ride) models.Ride {
	out := *r
	if r.Bids != nil {
		out.Bids = make([]models.Bid, len(r.Bids))
		copy(out.Bids, r.Bids)
	}
	if r.Messages != nil {
		out.Messages = make([]models.Message, len(r.Messages))
		copy(out.Messages, r.Messages)
	}
	if r.AcceptedBidID != nil {
		id := *r.AcceptedBidID
		out.AcceptedBidID = &id
	}
	return out
}
