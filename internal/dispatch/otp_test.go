package dispatch

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ridebid/ridebid-backend/internal/models"
)

var otpPattern = regexp.MustCompile(`^\d{4}$`)

func acceptAndArrive(t *testing.T, s *Service) (models.Ride, string) {
	t.Helper()
	ride := mustCreate(t, s)
	bid := mustBid(t, s, ride.ID, 15)
	_, otp, err := s.AcceptBid(ride.ID, bid.ID)
	if err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}
	if _, err := s.MarkDriverArrived(ride.ID); err != nil {
		t.Fatalf("MarkDriverArrived: %v", err)
	}
	return ride, otp
}

func TestOTPIsFourDigits(t *testing.T) {
	s := newTestService()
	ride := mustCreate(t, s)
	bid := mustBid(t, s, ride.ID, 15)

	_, otp, err := s.AcceptBid(ride.ID, bid.ID)
	if err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}
	if !otpPattern.MatchString(otp) {
		t.Fatalf("otp %q is not a 4-digit code", otp)
	}
}

func TestStartRideWrongOTPLeavesStatus(t *testing.T) {
	s := newTestService()
	ride, otp := acceptAndArrive(t, s)

	wrong := "0000"
	if wrong == otp {
		wrong = "0001"
	}
	if _, err := s.StartRide(ride.ID, wrong); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("got %v, want ErrOtpMismatch", err)
	}

	got, _ := s.GetRide(ride.ID)
	if got.Status != models.RideStatusArrived {
		t.Fatalf("status = %q, want driver_arrived after a failed attempt", got.Status)
	}

	// The code is still valid after a failed attempt.
	if _, err := s.StartRide(ride.ID, otp); err != nil {
		t.Fatalf("StartRide with correct code: %v", err)
	}
}

func TestOTPAttemptLimit(t *testing.T) {
	s := NewService(Options{OTPMaxAttempts: 3})
	ride, otp := acceptAndArrive(t, s)

	wrong := "0000"
	if wrong == otp {
		wrong = "0001"
	}
	for i := 0; i < 3; i++ {
		if _, err := s.StartRide(ride.ID, wrong); !errors.Is(err, ErrOtpMismatch) {
			t.Fatalf("attempt %d: got %v, want ErrOtpMismatch", i+1, err)
		}
	}

	// Budget spent: even the correct code is refused now.
	if _, err := s.StartRide(ride.ID, otp); !errors.Is(err, ErrOtpExpired) {
		t.Fatalf("got %v, want ErrOtpExpired after attempt limit", err)
	}

	// A reissued code unlocks the ride again.
	fresh, err := s.ReissueOTP(ride.ID)
	if err != nil {
		t.Fatalf("ReissueOTP: %v", err)
	}
	if _, err := s.StartRide(ride.ID, fresh); err != nil {
		t.Fatalf("StartRide with reissued code: %v", err)
	}
}

func TestOTPExpiry(t *testing.T) {
	s := NewService(Options{OTPTTL: 10 * time.Minute})
	ride, otp := acceptAndArrive(t, s)

	// Age the code past its window.
	s.mu.RLock()
	entry := s.rides[ride.ID]
	s.mu.RUnlock()
	entry.mu.Lock()
	entry.otp.issuedAt = time.Now().Add(-time.Hour)
	entry.mu.Unlock()

	if _, err := s.StartRide(ride.ID, otp); !errors.Is(err, ErrOtpExpired) {
		t.Fatalf("got %v, want ErrOtpExpired", err)
	}

	got, _ := s.GetRide(ride.ID)
	if got.Status != models.RideStatusArrived {
		t.Fatalf("status = %q, want driver_arrived", got.Status)
	}
}

func TestReissueOTPOnlyWhileCodeIsLive(t *testing.T) {
	s := newTestService()

	ride := mustCreate(t, s)
	if _, err := s.ReissueOTP(ride.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reissue on pending: got %v, want ErrInvalidTransition", err)
	}

	bid := mustBid(t, s, ride.ID, 15)
	if _, _, err := s.AcceptBid(ride.ID, bid.ID); err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}
	reissued, err := s.ReissueOTP(ride.ID)
	if err != nil {
		t.Fatalf("reissue on accepted: %v", err)
	}
	if !otpPattern.MatchString(reissued) {
		t.Fatalf("reissued otp %q is not a 4-digit code", reissued)
	}

	if _, err := s.MarkDriverArrived(ride.ID); err != nil {
		t.Fatalf("MarkDriverArrived: %v", err)
	}
	if _, err := s.StartRide(ride.ID, reissued); err != nil {
		t.Fatalf("StartRide: %v", err)
	}

	if _, err := s.ReissueOTP(ride.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reissue on started: got %v, want ErrInvalidTransition", err)
	}
}
