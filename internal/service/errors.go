package service

import "errors"

var (
	// ErrInvalidCredentials covers wrong email/password pairs without
	// revealing which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified rejects password login before the email is verified.
	ErrNotVerified = errors.New("email not verified")
	// ErrGoogleAccount rejects password login for externally-authenticated
	// accounts.
	ErrGoogleAccount = errors.New("this account uses Google sign-in")
	// ErrInvalidOTP covers missing, mismatched, consumed, and expired codes.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
	// ErrForbidden rejects access to a resource the caller does not own.
	ErrForbidden = errors.New("access denied")
	// ErrAmountMismatch rejects bookings whose paid amount does not cover
	// the room price for the selected dates.
	ErrAmountMismatch = errors.New("amount does not match the room price for the selected dates")
)
