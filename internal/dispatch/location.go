package dispatch

import (
	"time"
)

// DriverLocation is the single most recent position reported for a ride's
// driver, with a server-assigned timestamp. No history is retained.
type DriverLocation struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateLocation overwrites the driver position for a ride. Last write wins;
// the write runs under the ride's entry lock so a concurrent read never sees
// a torn coordinate pair.
func (s *Service) UpdateLocation(rideID string, lat, lng float64) error {
	if err := validateCoordinate(lat, lng); err != nil {
		return err
	}
	entry, err := s.entry(rideID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	entry.loc = &DriverLocation{Lat: lat, Lng: lng, UpdatedAt: time.Now()}
	entry.mu.Unlock()
	return nil
}

// Location returns the last reported driver position, or nil when the driver
// has not reported yet.
func (s *Service) Location(rideID string) (*DriverLocation, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.loc == nil {
		return nil, nil
	}
	loc := *entry.loc
	return &loc, nil
}
