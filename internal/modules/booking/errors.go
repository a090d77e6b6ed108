package booking

import "hostelbooking/internal/pkg/apperror"

var (
	ErrBookingNotFound    = apperror.New(apperror.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrRoomNotFound       = apperror.New(apperror.KindNotFound, "ROOM_NOT_FOUND", "room not found")
	ErrStudentNotFound    = apperror.New(apperror.KindNotFound, "STUDENT_NOT_FOUND", "student not found")
	ErrBookingHasPayments = apperror.New(apperror.KindState, "BOOKING_HAS_PAYMENTS", "booking has recorded payments")
)
