package dispatch

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/ridebid/ridebid-backend/internal/models"
	"github.com/ridebid/ridebid-backend/pkg/utils"
)

// otpState holds the single-use pickup challenge for one ride. The code is
// minted exactly once at acceptance and consumed exactly once at ride start;
// a reissue replaces it wholesale. All access runs under the ride entry lock.
type otpState struct {
	code     string
	issuedAt time.Time
	attempts int
	consumed bool
}

func (o *otpState) issue() (string, error) {
	code, err := utils.GenerateOTP()
	if err != nil {
		return "", err
	}
	o.code = code
	o.issuedAt = time.Now()
	o.attempts = 0
	o.consumed = false
	return code, nil
}

func (o *otpState) verify(supplied string, ttl time.Duration, maxAttempts int) error {
	if o.code == "" || o.consumed {
		return ErrOtpExpired
	}
	if time.Since(o.issuedAt) > ttl {
		return fmt.Errorf("%w: code is older than %s", ErrOtpExpired, ttl)
	}
	if o.attempts >= maxAttempts {
		return fmt.Errorf("%w: attempt limit reached", ErrOtpExpired)
	}
	if subtle.ConstantTimeCompare([]byte(o.code), []byte(supplied)) != 1 {
		o.attempts++
		return ErrOtpMismatch
	}
	o.consumed = true
	return nil
}

// ReissueOTP replaces an expired or exhausted pickup code. Legal only while
// the ride is accepted or driver_arrived, the window in which the code is
// live but not yet consumed.
func (s *Service) ReissueOTP(rideID string) (string, error) {
	entry, err := s.entry(rideID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	switch entry.ride.Status {
	case models.RideStatusAccepted, models.RideStatusArrived:
	default:
		return "", fmt.Errorf("%w: ride is %s", ErrInvalidTransition, entry.ride.Status)
	}
	code, err := entry.otp.issue()
	if err != nil {
		return "", fmt.Errorf("mint otp: %v", err)
	}
	return code, nil
}
