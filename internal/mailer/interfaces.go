package mailer

import "time"

// Service sends transactional email. Implementations must not block beyond
// a bounded timeout; callers treat failures as non-fatal where a write has
// already committed.
type Service interface {
	SendOTPEmail(toEmail, code string) error
	SendBookingConfirmation(toEmail, guestName, roomName string, start, end time.Time, amount float64) error
}
