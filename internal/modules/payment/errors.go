package payment

import "hostelbooking/internal/pkg/apperror"

var (
	ErrBookingNotFound = apperror.New(apperror.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrInvalidMethod   = apperror.New(apperror.KindValidation, "INVALID_PAYMENT_METHOD", "invalid payment method")
)
