package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOTP indicates a failed one-time-password verification.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPExpired indicates the one-time password is no longer usable.
	ErrOTPExpired = errors.New("otp expired")
	// ErrTooManyAttempts indicates the OTP attempt budget is exhausted.
	ErrTooManyAttempts = errors.New("too many attempts")
)
