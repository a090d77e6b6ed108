package eligibility

import "hostelbooking/internal/pkg/apperror"

var (
	ErrActiveBookingConflict = apperror.New(apperror.KindConflict, "ACTIVE_BOOKING_CONFLICT", "student already has an active booking")
	ErrGenderIncompatible    = apperror.New(apperror.KindConflict, "GENDER_INCOMPATIBLE", "room type does not accept this gender")
	ErrRoomGenderMismatch    = apperror.New(apperror.KindConflict, "ROOM_GENDER_MISMATCH", "room occupants have a different gender")
	ErrGenderUndeclared      = apperror.New(apperror.KindConflict, "GENDER_UNDECLARED", "single-gender room requires a declared gender")
	ErrRoomUnavailable       = apperror.New(apperror.KindConflict, "ROOM_UNAVAILABLE", "room is not available")
	ErrCheckInInPast         = apperror.New(apperror.KindValidation, "CHECK_IN_IN_PAST", "check-in date is in the past")
)
