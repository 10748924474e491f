package mailer

import (
	"time"

	"github.com/stayloft/hotel-bookings/internal/domain"
	"github.com/stayloft/hotel-bookings/pkg/logger"
)

// DevMailer logs messages instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendOTPEmail(toEmail, code string) error {
	logger.Info("[DEV MAIL] OTP email",
		"to", toEmail,
		"code", code,
	)
	return nil
}

func (d *DevMailer) SendBookingConfirmation(toEmail, guestName, roomName string, start, end time.Time, amount float64) error {
	logger.Info("[DEV MAIL] Booking confirmation",
		"to", toEmail,
		"guest", guestName,
		"room", roomName,
		"start", start.Format(domain.DateLayout),
		"end", end.Format(domain.DateLayout),
		"amount", amount,
	)
	return nil
}
