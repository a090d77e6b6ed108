package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type BookingType string

const (
	BookingSemester BookingType = "semester"
	BookingMonthly  BookingType = "monthly"
	BookingWeekly   BookingType = "weekly"
)

// ActiveStatuses hold a student's single active booking and a room slot.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn}

// Booking is a reservation of one room by one student. Amounts are in minor units.
type Booking struct {
	ID                 int64         `json:"id"`
	HostelID           int64         `json:"hostel_id"`
	RoomID             int64         `json:"room_id"`
	StudentID          int64         `json:"student_id"`
	BookingType        BookingType   `json:"booking_type"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	CheckInDate        time.Time     `json:"check_in_date"`
	CheckOutDate       time.Time     `json:"check_out_date"`
	TotalAmount        int64         `json:"total_amount"`
	AmountPaid         int64         `json:"amount_paid"`
	AmountDue          int64         `json:"amount_due"`
	BookingFee         int64         `json:"booking_fee"`
	BookingFeePaid     bool          `json:"booking_fee_paid"`
	PaymentDueDate     time.Time     `json:"payment_due_date"`
	Notes              string        `json:"notes,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty"`
	CheckedInAt        *time.Time    `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time    `json:"checked_out_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	OverdueAt          *time.Time    `json:"overdue_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func IsActive(s BookingStatus) bool {
	for _, a := range ActiveStatuses {
		if a == s {
			return true
		}
	}
	return false
}

func IsValidBookingType(t BookingType) bool {
	switch t {
	case BookingSemester, BookingMonthly, BookingWeekly:
		return true
	}
	return false
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
