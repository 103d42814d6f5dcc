package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/ridebid/ridebid-backend/internal/models"
	"github.com/ridebid/ridebid-backend/internal/observability"
)

// PostMessage appends one chat line to the ride and returns the updated
// message list. The log is append-only and closes once the ride reaches a
// terminal state.
func (s *Service) PostMessage(rideID, from, text string) ([]models.Message, error) {
	if from != models.MessageFromUser && from != models.MessageFromDriver {
		return nil, fmt.Errorf("%w: sender must be %q or %q", ErrInvalidInput, models.MessageFromUser, models.MessageFromDriver)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}

	entry, err := s.entry(rideID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	if models.TerminalStatus(entry.ride.Status) {
		status := entry.ride.Status
		entry.mu.Unlock()
		return nil, fmt.Errorf("%w: ride is %s", ErrChatClosed, status)
	}
	entry.ride.Messages = append(entry.ride.Messages, models.Message{
		RideID: rideID,
		From:   from,
		Text:   text,
		SentAt: time.Now(),
	})
	messages := append([]models.Message(nil), entry.ride.Messages...)
	snapshot := copyRide(&entry.ride)
	entry.mu.Unlock()

	observability.ChatMessages.Inc()
	s.persistSnapshot(snapshot)
	return messages, nil
}

// Messages returns all chat lines for the ride in insertion order.
func (s *Service) Messages(rideID string) ([]models.Message, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return append([]models.Message(nil), entry.ride.Messages...), nil
}
