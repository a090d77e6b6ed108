package booking

import (
	"time"

	"hostelbooking/internal/domain"
)

// CreateBookingRequest is the HTTP body for POST /bookings. Dates are
// YYYY-MM-DD or RFC 3339. StudentID is honoured for staff only.
type CreateBookingRequest struct {
	RoomID       int64  `json:"room_id" binding:"required,gt=0"`
	BookingType  string `json:"booking_type" binding:"required"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
	Notes        string `json:"notes" binding:"max=1000"`
	StudentID    int64  `json:"student_id" binding:"omitempty,gt=0"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CreateInput is the parsed form of CreateBookingRequest.
type CreateInput struct {
	StudentID    int64
	RoomID       int64
	BookingType  domain.BookingType
	CheckInDate  time.Time
	CheckOutDate time.Time
	Notes        string
}

// SweepResult summarises one scheduler pass over candidate bookings.
type SweepResult struct {
	Job        string `json:"job"`
	Candidates int    `json:"candidates"`
	Changed    int    `json:"changed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
