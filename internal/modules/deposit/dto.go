package deposit

import (
	"context"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/gateway"
)

// PaymentGatewayClient confirms that an external payment reference was paid.
type PaymentGatewayClient interface {
	Verify(ctx context.Context, reference string) (gateway.Verification, error)
}

type ApplyDepositRequest struct {
	Amount int64 `json:"amount"`
}

type RegisterDepositRequest struct {
	Reference   string `json:"reference" binding:"required,max=128"`
	DepositType string `json:"deposit_type" binding:"omitempty,oneof=top_up security"`
}

// Application is the outcome of spending deposit credit on a booking.
type Application struct {
	Deposit domain.Deposit     `json:"deposit"`
	Payment domain.Payment     `json:"payment"`
	Booking domain.BookingView `json:"booking"`
}

type Statement struct {
	Balance  int64            `json:"balance"`
	Deposits []domain.Deposit `json:"deposits"`
}
