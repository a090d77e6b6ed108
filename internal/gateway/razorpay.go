package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// ErrNotConfigured is returned when no gateway credentials were provided.
var ErrNotConfigured = errors.New("payment gateway not configured")

// statusCaptured is the only Razorpay payment status that moves money.
const statusCaptured = "captured"

// Verification is the gateway's view of one external payment reference.
type Verification struct {
	Reference   string    `json:"reference"`
	Success     bool      `json:"success"`
	Status      string    `json:"status"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	PaidAt      time.Time `json:"paid_at"`
}

// Fetcher is the slice of the Razorpay SDK Verify needs.
type Fetcher interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Razorpay struct {
	payments Fetcher
}

// NewRazorpay returns a gateway backed by the Razorpay payments API. Empty
// credentials yield a gateway whose Verify always fails with ErrNotConfigured.
func NewRazorpay(keyID, keySecret string) *Razorpay {
	if keyID == "" || keySecret == "" {
		return &Razorpay{}
	}
	client := razorpay.NewClient(keyID, keySecret)
	return &Razorpay{payments: client.Payment}
}

// NewWithFetcher is used by tests and alternative transports.
func NewWithFetcher(f Fetcher) *Razorpay {
	return &Razorpay{payments: f}
}

func (g *Razorpay) Configured() bool {
	return g.payments != nil
}

// Verify looks the payment up by id. A payment that exists but is not
// captured is a valid, unsuccessful verification, not an error.
func (g *Razorpay) Verify(ctx context.Context, reference string) (Verification, error) {
	if g.payments == nil {
		return Verification{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return Verification{}, err
	}

	payment, err := g.payments.Fetch(reference, nil, nil)
	if err != nil {
		return Verification{}, fmt.Errorf("fetch razorpay payment %s: %w", reference, err)
	}

	v := Verification{Reference: reference}
	if s, ok := payment["status"].(string); ok {
		v.Status = s
	}
	if c, ok := payment["currency"].(string); ok {
		v.Currency = c
	}
	// JSON numbers decode as float64; amounts are already in paise.
	if a, ok := payment["amount"].(float64); ok {
		v.AmountMinor = int64(a)
	}
	if ts, ok := payment["created_at"].(float64); ok {
		v.PaidAt = time.Unix(int64(ts), 0).UTC()
	}
	v.Success = v.Status == statusCaptured && v.AmountMinor > 0
	return v, nil
}
