package domain

import (
	"time"

	"hostelbooking/internal/pkg/apperror"
)

const (
	PaymentWindow       = 7 * 24 * time.Hour
	ReasonNonPayment    = "non-payment"
	ReasonNoShow        = "no-show"
	DefaultCancelReason = "cancelled by request"
)

// Each transition takes a booking by value and returns the updated copy.
// Occupancy side effects are applied by the caller in the same transaction.

func Confirm(b Booking, now time.Time) (Booking, error) {
	if b.Status != BookingPending {
		return b, invalidTransition(b, BookingConfirmed)
	}
	b.Status = BookingConfirmed
	b.ConfirmedAt = stamp(now)
	return b, nil
}

func CheckIn(b Booking, now time.Time) (Booking, error) {
	if b.Status != BookingConfirmed {
		return b, invalidTransition(b, BookingCheckedIn)
	}
	if b.PaymentStatus != PaymentPaid {
		return b, apperror.Wrapf(ErrPaymentIncomplete, "payment status is %s, amount due %d", b.PaymentStatus, b.AmountDue)
	}
	if now.Before(DateOf(b.CheckInDate)) {
		return b, apperror.Wrapf(ErrTooEarly, "check-in opens on %s", b.CheckInDate.Format("2006-01-02"))
	}
	b.Status = BookingCheckedIn
	b.CheckedInAt = stamp(now)
	return b, nil
}

func CheckOut(b Booking, now time.Time) (Booking, error) {
	if b.Status != BookingCheckedIn {
		return b, invalidTransition(b, BookingCheckedOut)
	}
	b.Status = BookingCheckedOut
	b.CheckedOutAt = stamp(now)
	return b, nil
}

func Cancel(b Booking, reason string, now time.Time) (Booking, error) {
	if b.Status != BookingPending && b.Status != BookingConfirmed {
		return b, invalidTransition(b, BookingCancelled)
	}
	if reason == "" {
		reason = DefaultCancelReason
	}
	b.Status = BookingCancelled
	b.PaymentStatus = PaymentRefunded
	b.CancellationReason = reason
	b.CancelledAt = stamp(now)
	return b, nil
}

// NoShowDue reports whether the whole check-in day has passed without a check-in.
func NoShowDue(b Booking, now time.Time) bool {
	return b.Status == BookingConfirmed &&
		b.CheckedInAt == nil &&
		!now.Before(DateOf(b.CheckInDate).AddDate(0, 0, 1))
}

func MarkNoShow(b Booking, now time.Time) (Booking, error) {
	if !NoShowDue(b, now) {
		return b, invalidTransition(b, BookingNoShow)
	}
	b.Status = BookingNoShow
	b.CancellationReason = ReasonNoShow
	b.CancelledAt = stamp(now)
	return b, nil
}

// OverdueDue reports whether an unpaid booking has passed its payment due date.
func OverdueDue(b Booking, now time.Time) bool {
	if b.Status != BookingPending && b.Status != BookingConfirmed {
		return false
	}
	if b.PaymentStatus != PaymentPending && b.PaymentStatus != PaymentPartial {
		return false
	}
	return now.After(b.PaymentDueDate)
}

// MarkOverdue flips only the payment status. changed is false when the
// booking is already overdue or not eligible, which keeps the sweep idempotent.
func MarkOverdue(b Booking, now time.Time) (Booking, bool) {
	if !OverdueDue(b, now) {
		return b, false
	}
	b.PaymentStatus = PaymentOverdue
	b.OverdueAt = stamp(now)
	return b, true
}

// AutoCancelDue reports whether a pending booking has been overdue past the grace period.
func AutoCancelDue(b Booking, now time.Time, grace time.Duration) bool {
	return b.Status == BookingPending &&
		b.PaymentStatus == PaymentOverdue &&
		now.After(b.PaymentDueDate.Add(grace))
}

func AutoCancel(b Booking, now time.Time, grace time.Duration) (Booking, error) {
	if !AutoCancelDue(b, now, grace) {
		return b, invalidTransition(b, BookingCancelled)
	}
	return Cancel(b, ReasonNonPayment, now)
}

// ReleasesRoom reports whether moving from -> to frees an occupancy slot.
func ReleasesRoom(from, to BookingStatus) bool {
	return IsActive(from) && !IsActive(to)
}

func invalidTransition(b Booking, to BookingStatus) error {
	return apperror.Wrapf(ErrInvalidTransition, "cannot move booking %d from %s to %s", b.ID, b.Status, to)
}

func stamp(now time.Time) *time.Time {
	t := now.UTC()
	return &t
}
