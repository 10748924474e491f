package domain_test

import (
	"testing"
	"time"

	"github.com/stayloft/hotel-bookings/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{
			name:   "identical ranges",
			aStart: date(2026, 3, 10), aEnd: date(2026, 3, 12),
			bStart: date(2026, 3, 10), bEnd: date(2026, 3, 12),
			want: true,
		},
		{
			name:   "partial overlap",
			aStart: date(2026, 3, 10), aEnd: date(2026, 3, 14),
			bStart: date(2026, 3, 12), bEnd: date(2026, 3, 16),
			want: true,
		},
		{
			name:   "contained range",
			aStart: date(2026, 3, 10), aEnd: date(2026, 3, 20),
			bStart: date(2026, 3, 12), bEnd: date(2026, 3, 14),
			want: true,
		},
		{
			name:   "checkout day equals checkin day",
			aStart: date(2026, 3, 10), aEnd: date(2026, 3, 12),
			bStart: date(2026, 3, 12), bEnd: date(2026, 3, 14),
			want: false,
		},
		{
			name:   "checkin day equals checkout day reversed",
			aStart: date(2026, 3, 12), aEnd: date(2026, 3, 14),
			bStart: date(2026, 3, 10), bEnd: date(2026, 3, 12),
			want: false,
		},
		{
			name:   "fully disjoint",
			aStart: date(2026, 3, 10), aEnd: date(2026, 3, 12),
			bStart: date(2026, 4, 1), bEnd: date(2026, 4, 3),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Fatalf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}

			// Overlap is symmetric
			if domain.Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd) != tt.want {
				t.Fatal("Overlaps is not symmetric")
			}
		})
	}
}

func TestValidateDates(t *testing.T) {
	today := date(2026, 3, 10)

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    bool
	}{
		{"valid future stay", date(2026, 3, 12), date(2026, 3, 14), false},
		{"starts today", date(2026, 3, 10), date(2026, 3, 11), false},
		{"end equals start", date(2026, 3, 12), date(2026, 3, 12), true},
		{"end before start", date(2026, 3, 14), date(2026, 3, 12), true},
		{"start in the past", date(2026, 3, 9), date(2026, 3, 12), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateDates(tt.start, tt.end, today)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDates(%v, %v) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := domain.ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !got.Equal(date(2026, 3, 10)) {
		t.Fatalf("ParseDate = %v, want %v", got, date(2026, 3, 10))
	}

	// RFC3339 timestamps are accepted and truncated to the day
	got, err = domain.ParseDate("2026-03-10T15:04:05Z")
	if err != nil {
		t.Fatalf("ParseDate RFC3339 failed: %v", err)
	}
	if !got.Equal(date(2026, 3, 10)) {
		t.Fatalf("ParseDate RFC3339 = %v, want %v", got, date(2026, 3, 10))
	}

	if _, err := domain.ParseDate("10/03/2026"); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
	if _, err := domain.ParseDate(""); err == nil {
		t.Fatal("Expected error for empty date")
	}
}

func TestNights(t *testing.T) {
	if n := domain.Nights(date(2026, 3, 10), date(2026, 3, 12)); n != 2 {
		t.Fatalf("Nights = %d, want 2", n)
	}
	if n := domain.Nights(date(2026, 3, 10), date(2026, 3, 11)); n != 1 {
		t.Fatalf("Nights = %d, want 1", n)
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	valid := func() domain.CreateBookingRequest {
		return domain.CreateBookingRequest{
			RoomID:       1,
			StartDate:    "2026-03-10",
			EndDate:      "2026-03-12",
			GuestName:    "Jordan Miles",
			GovernmentID: "344567kjd",
			PhoneNumber:  "+15550001111",
			Amount:       240,
			PaymentID:    "pi_123",
		}
	}

	req := valid()
	req.Normalize()
	if err := req.Validate(); err != nil {
		t.Fatalf("Valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.CreateBookingRequest)
	}{
		{"missing room", func(r *domain.CreateBookingRequest) { r.RoomID = 0 }},
		{"missing guest name", func(r *domain.CreateBookingRequest) { r.GuestName = "" }},
		{"missing government id", func(r *domain.CreateBookingRequest) { r.GovernmentID = "" }},
		{"missing payment id", func(r *domain.CreateBookingRequest) { r.PaymentID = "" }},
		{"zero amount", func(r *domain.CreateBookingRequest) { r.Amount = 0 }},
		{"negative amount", func(r *domain.CreateBookingRequest) { r.Amount = -10 }},
		{"missing dates", func(r *domain.CreateBookingRequest) { r.StartDate = ""; r.EndDate = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			req.Normalize()
			if err := req.Validate(); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}
}
