package domain

import (
	"fmt"
	"strings"
	"time"
)

// Booking reserves a room for the half-open date range [StartDate, EndDate).
// Guest and payment details are a snapshot taken at booking time; they are
// not kept in sync with the user record afterward.
type Booking struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	RoomID       int64     `json:"room_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	GuestName    string    `json:"guest_name"`
	GovernmentID string    `json:"government_id"`
	PhoneNumber  string    `json:"phone_number"`
	Amount       float64   `json:"amount"`
	PaymentID    string    `json:"payment_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateBookingRequest struct {
	RoomID       int64   `json:"room_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	GuestName    string  `json:"guest_name"`
	GovernmentID string  `json:"government_id"`
	PhoneNumber  string  `json:"phone_number"`
	Amount       float64 `json:"amount"`
	PaymentID    string  `json:"payment_id"`
}

type CreateOrderRequest struct {
	Amount float64 `json:"amount"`
}

type BookingDTO struct {
	ID           int64     `json:"id"`
	RoomID       int64     `json:"room_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	GuestName    string    `json:"guest_name"`
	GovernmentID string    `json:"government_id"`
	PhoneNumber  string    `json:"phone_number"`
	Amount       float64   `json:"amount"`
	PaymentID    string    `json:"payment_id"`
	CreatedAt    time.Time `json:"created_at"`
}

const DateLayout = "2006-01-02"

// ParseDate reads a date-only value. RFC 3339 timestamps are accepted and
// truncated to their date component.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// Today truncates now to date-only granularity in UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *CreateBookingRequest) Normalize() {
	r.GuestName = strings.TrimSpace(r.GuestName)
	r.GovernmentID = strings.TrimSpace(r.GovernmentID)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.PaymentID = strings.TrimSpace(r.PaymentID)
}

func (r *CreateBookingRequest) Validate() error {
	if r.RoomID <= 0 {
		return fmt.Errorf("room_id is required")
	}
	if r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("start_date and end_date are required")
	}
	if r.GuestName == "" {
		return fmt.Errorf("guest_name is required")
	}
	if r.GovernmentID == "" {
		return fmt.Errorf("government_id is required")
	}
	if r.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if !isValidPhone(r.PhoneNumber) {
		return fmt.Errorf("invalid phone format")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}
	if r.PaymentID == "" {
		return fmt.Errorf("payment_id is required")
	}
	return nil
}

// ValidateDates rejects inverted ranges and ranges starting before today.
func ValidateDates(start, end, today time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("end date must be after start date")
	}
	if start.Before(today) {
		return fmt.Errorf("start date must not be in the past")
	}
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. A range ending exactly when another starts does
// not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Nights returns the number of nights covered by [start, end).
func Nights(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

func (b *Booking) ToDTO(governmentID string) *BookingDTO {
	return &BookingDTO{
		ID:           b.ID,
		RoomID:       b.RoomID,
		StartDate:    b.StartDate.Format(DateLayout),
		EndDate:      b.EndDate.Format(DateLayout),
		GuestName:    b.GuestName,
		GovernmentID: governmentID,
		PhoneNumber:  b.PhoneNumber,
		Amount:       b.Amount,
		PaymentID:    b.PaymentID,
		CreatedAt:    b.CreatedAt,
	}
}
