package dispatch

import "errors"

// Error taxonomy for the dispatch core. Handlers map these onto HTTP status
// codes with errors.Is; everything here is a normal, expected outcome that a
// client corrects by re-fetching ride state.
var (
	// ErrInvalidInput marks malformed or missing caller input, such as
	// out-of-range coordinates or an empty chat message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRideNotFound is returned when the referenced ride id is unknown.
	ErrRideNotFound = errors.New("ride not found")

	// ErrBidNotFound is returned when a bid id is absent from the ride's ledger.
	ErrBidNotFound = errors.New("bid not found")

	// ErrRideNotOpen is returned when an operation requires a pending ride
	// and the ride has moved on, including the lost-race case on AcceptBid.
	ErrRideNotOpen = errors.New("ride is no longer open")

	// ErrInvalidTransition is returned when the requested lifecycle step is
	// not the single legal transition from the ride's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrOtpMismatch is returned when the supplied pickup code does not match.
	// The ride's status is left unchanged.
	ErrOtpMismatch = errors.New("otp mismatch")

	// ErrOtpExpired is returned once the pickup code is past its expiry
	// window or the attempt budget is spent; the rider must reissue a code.
	ErrOtpExpired = errors.New("otp expired")

	// ErrChatClosed is returned for chat posts on a ride in a terminal state.
	ErrChatClosed = errors.New("chat closed")
)
