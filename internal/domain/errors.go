package domain

import "hostelbooking/internal/pkg/apperror"

var (
	ErrInvalidBookingType = apperror.New(apperror.KindValidation, "INVALID_BOOKING_TYPE", "invalid booking type")
	ErrInvalidDates       = apperror.New(apperror.KindValidation, "INVALID_DATES", "invalid booking dates")
	ErrInvalidAmount      = apperror.New(apperror.KindValidation, "INVALID_AMOUNT", "invalid amount")
	ErrAmountExceedsDue   = apperror.New(apperror.KindValidation, "AMOUNT_EXCEEDS_DUE", "amount exceeds due")

	ErrInvalidTransition = apperror.New(apperror.KindState, "INVALID_STATUS_TRANSITION", "invalid status transition")
	ErrPaymentIncomplete = apperror.New(apperror.KindState, "PAYMENT_INCOMPLETE", "payment incomplete")
	ErrTooEarly          = apperror.New(apperror.KindState, "TOO_EARLY", "too early to check in")
	ErrBookingCancelled  = apperror.New(apperror.KindState, "BOOKING_CANCELLED", "booking is cancelled")
	ErrFeeAlreadyPaid    = apperror.New(apperror.KindState, "BOOKING_FEE_PAID", "booking fee already paid")
)
