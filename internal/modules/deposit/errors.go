package deposit

import "hostelbooking/internal/pkg/apperror"

var (
	ErrInsufficientBalance = apperror.New(apperror.KindState, "INSUFFICIENT_BALANCE", "insufficient deposit balance")
	ErrBookingNotFound     = apperror.New(apperror.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrBookingClosed       = apperror.New(apperror.KindState, "BOOKING_CLOSED", "booking is closed")
	ErrNothingDue          = apperror.New(apperror.KindState, "NOTHING_DUE", "nothing due on booking")
	ErrUserNotFound        = apperror.New(apperror.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrInvalidDepositType  = apperror.New(apperror.KindValidation, "INVALID_DEPOSIT_TYPE", "invalid deposit type")
	ErrReferenceOwned      = apperror.New(apperror.KindConflict, "REFERENCE_IN_USE", "payment reference belongs to another user")
)

var ErrGatewayUnavailable = apperror.New(apperror.KindConcurrency, "GATEWAY_UNAVAILABLE", "payment gateway unavailable, retry later")
