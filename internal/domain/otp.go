package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	OTPLength   = 6
	OTPValidity = 10 * time.Minute
)

// OTP is a short-lived passcode proving control of an email address. Only
// the bcrypt hash of the code is persisted; the clear code lives in the
// email.
type OTP struct {
	ID        int64
	Email     string
	CodeHash  string
	CreatedAt time.Time
}

// ValidAt reports whether the code is still inside its validity window at
// the given instant. The window is half-open: a code issued at T is valid
// strictly before T+validity.
func (o *OTP) ValidAt(now time.Time, validity time.Duration) bool {
	return now.Before(o.CreatedAt.Add(validity))
}

// GenerateOTPCode returns a random 6-digit numeric code.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
