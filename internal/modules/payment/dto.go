package payment

import "hostelbooking/internal/domain"

// RecordPaymentRequest is the body of POST /bookings/:id/payments. Amount is
// in minor units. ReceivedBy is filled from the caller, never the body.
type RecordPaymentRequest struct {
	Amount     int64  `json:"amount"`
	Method     string `json:"method" binding:"required"`
	Reference  string `json:"reference" binding:"max=128"`
	ReceivedBy int64  `json:"-"`
}

type BookingFeeRequest struct {
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference" binding:"max=128"`
}

// Receipt is returned by every ledger write.
type Receipt struct {
	Payment domain.Payment     `json:"payment"`
	Booking domain.BookingView `json:"booking"`
}

var acceptedMethods = map[domain.PaymentMethod]bool{
	domain.MethodCash:         true,
	domain.MethodCard:         true,
	domain.MethodBankTransfer: true,
	domain.MethodMobileMoney:  true,
}
