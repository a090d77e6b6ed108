package domain

import "time"

// BookingView is the booking projection returned by every operation.
type BookingView struct {
	Booking
	DurationDays           int  `json:"duration_days"`
	IsOverdue              bool `json:"is_overdue"`
	CanCheckIn             bool `json:"can_check_in"`
	CanCheckOut            bool `json:"can_check_out"`
	CanCancel              bool `json:"can_cancel"`
	PaymentProgressPercent int  `json:"payment_progress_percent"`
}

func Project(b Booking, now time.Time) BookingView {
	return BookingView{
		Booking:                b,
		DurationDays:           DurationDays(b.CheckInDate, b.CheckOutDate),
		IsOverdue:              b.PaymentStatus == PaymentOverdue || OverdueDue(b, now),
		CanCheckIn:             b.Status == BookingConfirmed && b.PaymentStatus == PaymentPaid && !now.Before(DateOf(b.CheckInDate)),
		CanCheckOut:            b.Status == BookingCheckedIn,
		CanCancel:              b.Status == BookingPending || b.Status == BookingConfirmed,
		PaymentProgressPercent: progress(b.AmountPaid, b.TotalAmount),
	}
}

func progress(paid, total int64) int {
	if total <= 0 {
		return 100
	}
	if paid >= total {
		return 100
	}
	return int(paid * 100 / total)
}
