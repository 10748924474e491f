package payments

import (
	"context"
	"errors"
)

// ErrPaymentNotVerified is returned when a client-supplied payment
// reference cannot be confirmed against the gateway.
var ErrPaymentNotVerified = errors.New("payment could not be verified")

// Order is a gateway payment order awaiting completion by the client.
type Order struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret,omitempty"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Gateway creates payment orders and verifies completed payments. Amounts
// are in the gateway's minor currency unit.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency string) (*Order, error)
	VerifyPayment(ctx context.Context, paymentRef string, amountMinor int64) error
}
