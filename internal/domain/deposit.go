package domain

import "time"

type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositCompleted DepositStatus = "completed"
	DepositFailed    DepositStatus = "failed"
	DepositRefunded  DepositStatus = "refunded"
)

type DepositType string

const (
	DepositTopUp      DepositType = "top_up"
	DepositSecurity   DepositType = "security"
	DepositWithdrawal DepositType = "withdrawal"
)

// Deposit is one row of a user's standing credit ledger. Credits are
// positive, applied withdrawals negative. Rows are never edited.
type Deposit struct {
	ID               int64         `json:"id"`
	UserID           int64         `json:"user_id"`
	BookingID        *int64        `json:"booking_id,omitempty"`
	Amount           int64         `json:"amount"`
	Status           DepositStatus `json:"status"`
	DepositType      DepositType   `json:"deposit_type"`
	PaymentReference string        `json:"payment_reference"`
	ExpiresAt        *time.Time    `json:"expires_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
