package domain

import "hostelbooking/internal/pkg/apperror"

// DueFor is max(0, total - paid).
func DueFor(total, paid int64) int64 {
	if paid >= total {
		return 0
	}
	return total - paid
}

// ApplyPayment returns b with amount credited. The caller must hold the
// booking's row lock so that AmountDue is current.
func ApplyPayment(b Booking, amount int64) (Booking, error) {
	if amount <= 0 {
		return b, apperror.Wrapf(ErrInvalidAmount, "amount must be greater than 0, got %d", amount)
	}
	if b.Status == BookingCancelled {
		return b, apperror.Wrapf(ErrBookingCancelled, "booking %d cannot accept payments", b.ID)
	}
	if amount > b.AmountDue {
		return b, apperror.Wrapf(ErrAmountExceedsDue, "amount %d exceeds due amount of %d", amount, b.AmountDue)
	}

	b.AmountPaid += amount
	b.AmountDue = DueFor(b.TotalAmount, b.AmountPaid)
	switch {
	case b.AmountDue == 0:
		b.PaymentStatus = PaymentPaid
	case b.AmountPaid > 0:
		b.PaymentStatus = PaymentPartial
	}
	return b, nil
}
