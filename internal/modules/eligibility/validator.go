// Package eligibility decides whether a student may book a room.
package eligibility

import (
	"context"
	"time"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/pkg/apperror"
)

// BookingReader is the slice of the booking store the checks need. It must
// be bound to the caller's transaction.
type BookingReader interface {
	FindActiveByStudent(ctx context.Context, studentID int64) (*domain.Booking, error)
	CountOverlapping(ctx context.Context, roomID int64, from, to time.Time, statuses []domain.BookingStatus) (int64, error)
	OccupantGenders(ctx context.Context, roomID, excludeStudentID int64) ([]domain.Gender, error)
}

type Request struct {
	Student  domain.User
	Room     domain.Room
	RoomType domain.RoomType
	CheckIn  time.Time
	CheckOut time.Time
}

type Validator struct {
	strictGender bool
	now          func() time.Time
}

type Option func(*Validator)

// WithStrictGender rejects students without a declared gender from
// single-gender rooms instead of letting them through.
func WithStrictGender(strict bool) Option {
	return func(v *Validator) { v.strictGender = strict }
}

func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var overlapStatuses = []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCheckedIn}

// ValidateCreate runs the checks in order and returns the first failure.
func (v *Validator) ValidateCreate(ctx context.Context, bookings BookingReader, req Request) error {
	if err := v.checkDates(req.CheckIn, req.CheckOut); err != nil {
		return err
	}

	active, err := bookings.FindActiveByStudent(ctx, req.Student.ID)
	if err != nil {
		return err
	}
	if active != nil {
		return apperror.Wrapf(ErrActiveBookingConflict,
			"booking %d in hostel %d room %d is %s", active.ID, active.HostelID, active.RoomID, active.Status)
	}

	if err := v.checkGender(ctx, bookings, req); err != nil {
		return err
	}

	if !domain.HasFreeSlot(req.Room) {
		return apperror.Wrapf(ErrRoomUnavailable,
			"room %d is %s with %d/%d occupants", req.Room.ID, req.Room.Status, req.Room.CurrentOccupancy, req.Room.MaxOccupancy)
	}
	overlapping, err := bookings.CountOverlapping(ctx, req.Room.ID, req.CheckIn, req.CheckOut, overlapStatuses)
	if err != nil {
		return err
	}
	if overlapping >= int64(req.Room.MaxOccupancy) {
		return apperror.Wrapf(ErrRoomUnavailable,
			"room %d has %d confirmed bookings overlapping %s", req.Room.ID, overlapping, req.CheckIn.Format("2006-01-02"))
	}
	return nil
}

func (v *Validator) checkDates(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperror.Wrapf(domain.ErrInvalidDates, "check-in and check-out are required")
	}
	today := domain.DateOf(v.now())
	if domain.DateOf(checkIn).Before(today) {
		return apperror.Wrapf(ErrCheckInInPast, "check-in %s is before %s", checkIn.Format("2006-01-02"), today.Format("2006-01-02"))
	}
	if !checkOut.After(checkIn) {
		return apperror.Wrapf(domain.ErrInvalidDates, "check-out %s must be after check-in %s",
			checkOut.Format("2006-01-02"), checkIn.Format("2006-01-02"))
	}
	return nil
}

func (v *Validator) checkGender(ctx context.Context, bookings BookingReader, req Request) error {
	rt := req.RoomType
	if !rt.RestrictsGender() {
		return nil
	}

	g := req.Student.Gender
	if !g.Declared() {
		if v.strictGender {
			return apperror.Wrapf(ErrGenderUndeclared, "room type %q allows %v", rt.Name, rt.AllowedGenders)
		}
		return nil
	}
	if !rt.Allows(g) {
		return apperror.Wrapf(ErrGenderIncompatible, "room type %q allows %v, student is %s", rt.Name, rt.AllowedGenders, g)
	}

	occupants, err := bookings.OccupantGenders(ctx, req.Room.ID, req.Student.ID)
	if err != nil {
		return err
	}
	for _, og := range occupants {
		if og.Declared() && og != g {
			return apperror.Wrapf(ErrRoomGenderMismatch, "room %d has a %s occupant, student is %s", req.Room.ID, og, g)
		}
	}
	return nil
}
