package domain

import "time"

type PaymentType string

const (
	PaymentTypeBooking    PaymentType = "booking_payment"
	PaymentTypeDeposit    PaymentType = "deposit"
	PaymentTypeRefund     PaymentType = "refund"
	PaymentTypePenalty    PaymentType = "penalty"
	PaymentTypeBookingFee PaymentType = "booking_fee"
)

type PaymentMethod string

const (
	MethodCash          PaymentMethod = "cash"
	MethodCard          PaymentMethod = "card"
	MethodBankTransfer  PaymentMethod = "bank_transfer"
	MethodMobileMoney   PaymentMethod = "mobile_money"
	MethodAccountCredit PaymentMethod = "account_credit"
)

// Payment is an append-only funds movement against a booking.
type Payment struct {
	ID             int64         `json:"id"`
	BookingID      int64         `json:"booking_id"`
	Amount         int64         `json:"amount"`
	Method         PaymentMethod `json:"method"`
	Type           PaymentType   `json:"type"`
	TransactionRef string        `json:"transaction_ref"`
	PaymentDate    time.Time     `json:"payment_date"`
	ReceivedBy     int64         `json:"received_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}
