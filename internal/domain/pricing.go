package domain

import (
	"math"
	"time"

	"hostelbooking/internal/pkg/apperror"
)

// DurationDays is the stay length rounded up to whole days.
func DurationDays(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// ComputeTotal sizes a booking from its room type's prices.
func ComputeTotal(bt BookingType, rt RoomType, checkIn, checkOut time.Time) (int64, error) {
	days := int64(DurationDays(checkIn, checkOut))

	switch bt {
	case BookingSemester:
		return rt.PricePerSemester, nil
	case BookingMonthly:
		return rt.PricePerMonth * ceilDiv(days, 30), nil
	case BookingWeekly:
		weeks := ceilDiv(days, 7)
		if rt.PricePerWeek != nil {
			return *rt.PricePerWeek * weeks, nil
		}
		// half-up rounding of pricePerMonth * weeks / 4
		return (rt.PricePerMonth*weeks + 2) / 4, nil
	default:
		return 0, apperror.Wrapf(ErrInvalidBookingType, "unknown booking type %q", bt)
	}
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
