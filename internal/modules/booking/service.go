package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/metrics"
	"hostelbooking/internal/modules/eligibility"
	"hostelbooking/internal/modules/occupancy"
	"hostelbooking/internal/notification"
	"hostelbooking/internal/pkg/apperror"
	"hostelbooking/internal/repository"
)

type Config struct {
	// BookingFee is stamped on every new booking, in minor units.
	BookingFee      int64
	PaymentWindow   time.Duration
	AutoCancelGrace time.Duration
	SweepBatchSize  int
}

func (c Config) withDefaults() Config {
	if c.PaymentWindow <= 0 {
		c.PaymentWindow = domain.PaymentWindow
	}
	if c.AutoCancelGrace <= 0 {
		c.AutoCancelGrace = 7 * 24 * time.Hour
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = 500
	}
	return c
}

type Service struct {
	store     *repository.Store
	validator *eligibility.Validator
	occupancy *occupancy.Tracker
	notifier  notification.Notifier
	log       logrus.FieldLogger
	cfg       Config
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	store *repository.Store,
	validator *eligibility.Validator,
	tracker *occupancy.Tracker,
	notifier notification.Notifier,
	log logrus.FieldLogger,
	cfg Config,
	opts ...Option,
) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		store:     store,
		validator: validator,
		occupancy: tracker,
		notifier:  notifier,
		log:       log.WithField("component", "booking"),
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Now() time.Time { return s.now().UTC() }

// Create books a room for a student. Eligibility, the booking insert and the
// occupancy increment commit together.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.BookingView, error) {
	if !domain.IsValidBookingType(in.BookingType) {
		return domain.BookingView{}, apperror.Wrapf(domain.ErrInvalidBookingType,
			"booking type %q is not one of semester, monthly, weekly", in.BookingType)
	}

	now := s.Now()
	var created domain.Booking
	err := s.store.InTx(ctx, func(tx *repository.Tx) error {
		// The user row lock serializes creates for the same student.
		student, err := tx.LockUser(ctx, in.StudentID)
		if err != nil {
			return notFoundAs(err, ErrStudentNotFound, "student %d", in.StudentID)
		}
		room, err := tx.Rooms().GetByID(ctx, in.RoomID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound, "room %d", in.RoomID)
		}
		roomType, err := tx.Rooms().GetType(ctx, room.RoomTypeID)
		if err != nil {
			return notFoundAs(err, ErrRoomNotFound, "room type %d of room %d", room.RoomTypeID, room.ID)
		}

		if err := s.validator.ValidateCreate(ctx, tx.Bookings(), eligibility.Request{
			Student:  student,
			Room:     room,
			RoomType: roomType,
			CheckIn:  in.CheckInDate,
			CheckOut: in.CheckOutDate,
		}); err != nil {
			return err
		}

		total, err := domain.ComputeTotal(in.BookingType, roomType, in.CheckInDate, in.CheckOutDate)
		if err != nil {
			return err
		}

		b := domain.Booking{
			HostelID:       room.HostelID,
			RoomID:         room.ID,
			StudentID:      student.ID,
			BookingType:    in.BookingType,
			Status:         domain.BookingPending,
			PaymentStatus:  domain.PaymentPending,
			CheckInDate:    in.CheckInDate,
			CheckOutDate:   in.CheckOutDate,
			TotalAmount:    total,
			AmountDue:      total,
			BookingFee:     s.cfg.BookingFee,
			BookingFeePaid: s.cfg.BookingFee == 0,
			PaymentDueDate: now.Add(s.cfg.PaymentWindow),
			Notes:          in.Notes,
		}
		if total == 0 {
			b.PaymentStatus = domain.PaymentPaid
		}
		if err := tx.Bookings().Create(ctx, &b); err != nil {
			if repository.IsActiveBookingConflict(err) {
				return apperror.Wrapf(eligibility.ErrActiveBookingConflict, "student %d already holds an active booking", student.ID)
			}
			return err
		}
		if _, err := s.occupancy.Occupy(ctx, tx, room.ID); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return domain.BookingView{}, s.observe(err)
	}

	metrics.BookingTransitions.WithLabelValues("create").Inc()
	s.log.WithFields(logrus.Fields{
		"booking_id": created.ID,
		"student_id": created.StudentID,
		"room_id":    created.RoomID,
		"total":      created.TotalAmount,
	}).Info("booking created")
	s.notify(ctx, notification.BookingCreated, created, "")
	return domain.Project(created, now), nil
}

func (s *Service) Confirm(ctx context.Context, id int64) (domain.BookingView, error) {
	return s.transition(ctx, id, "confirm", notification.BookingConfirmed, func(b domain.Booking, now time.Time) (domain.Booking, error) {
		return domain.Confirm(b, now)
	})
}

func (s *Service) CheckIn(ctx context.Context, id int64) (domain.BookingView, error) {
	return s.transition(ctx, id, "check_in", notification.BookingCheckedIn, domain.CheckIn)
}

func (s *Service) CheckOut(ctx context.Context, id int64) (domain.BookingView, error) {
	return s.transition(ctx, id, "check_out", notification.BookingCheckedOut, domain.CheckOut)
}

// Cancel is open to staff and to the student who owns the booking.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id int64, reason string) (domain.BookingView, error) {
	return s.transitionAs(ctx, &actor, id, "cancel", notification.BookingCancelled, func(b domain.Booking, now time.Time) (domain.Booking, error) {
		return domain.Cancel(b, reason, now)
	})
}

func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id int64) (domain.BookingView, error) {
	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return domain.BookingView{}, notFoundAs(err, ErrBookingNotFound, "booking %d", id)
	}
	if !actor.CanAccess(b) {
		return domain.BookingView{}, apperror.Wrapf(ErrBookingNotFound, "booking %d", id)
	}
	return domain.Project(b, s.Now()), nil
}

func (s *Service) ListForStudent(ctx context.Context, studentID int64, limit, offset int) ([]domain.BookingView, error) {
	rows, err := s.store.Bookings().ListByStudent(ctx, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	out := make([]domain.BookingView, 0, len(rows))
	for _, b := range rows {
		out = append(out, domain.Project(b, now))
	}
	return out, nil
}

// Delete removes a booking that never received money, releasing its slot
// if it was still active.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var deleted domain.Booking
	err := s.store.WithBookingLock(ctx, id, func(tx *repository.Tx, b domain.Booking) error {
		if b.AmountPaid > 0 {
			return apperror.Wrapf(ErrBookingHasPayments, "booking %d has %d paid", b.ID, b.AmountPaid)
		}
		n, err := tx.Payments().CountByBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperror.Wrapf(ErrBookingHasPayments, "booking %d has %d payment records", b.ID, n)
		}
		if err := tx.Bookings().Delete(ctx, b.ID); err != nil {
			return err
		}
		if domain.IsActive(b.Status) {
			if _, err := s.occupancy.Release(ctx, tx, b.RoomID); err != nil {
				return err
			}
		}
		deleted = b
		return nil
	})
	if err != nil {
		return s.observe(notFoundAs(err, ErrBookingNotFound, "booking %d", id))
	}
	metrics.BookingTransitions.WithLabelValues("delete").Inc()
	s.notify(ctx, notification.BookingDeleted, deleted, "")
	return nil
}

type transitionFunc func(b domain.Booking, now time.Time) (domain.Booking, error)

func (s *Service) transition(ctx context.Context, id int64, name string, ev notification.EventType, fn transitionFunc) (domain.BookingView, error) {
	return s.transitionAs(ctx, nil, id, name, ev, fn)
}

// transitionAs locks the booking, applies fn and the matching occupancy
// change, and notifies after commit. A nil actor skips the access check.
func (s *Service) transitionAs(ctx context.Context, actor *domain.Actor, id int64, name string, ev notification.EventType, fn transitionFunc) (domain.BookingView, error) {
	now := s.Now()
	next, err := s.apply(ctx, actor, id, now, fn)
	if err != nil {
		return domain.BookingView{}, s.observe(err)
	}
	metrics.BookingTransitions.WithLabelValues(name).Inc()
	s.log.WithFields(logrus.Fields{"booking_id": next.ID, "status": next.Status, "transition": name}).Info("booking transition")
	s.notify(ctx, ev, next, next.CancellationReason)
	return domain.Project(next, now), nil
}

func (s *Service) apply(ctx context.Context, actor *domain.Actor, id int64, now time.Time, fn transitionFunc) (domain.Booking, error) {
	var out domain.Booking
	err := s.store.WithBookingLock(ctx, id, func(tx *repository.Tx, b domain.Booking) error {
		if actor != nil && !actor.CanAccess(b) {
			return apperror.Wrapf(ErrBookingNotFound, "booking %d", id)
		}
		next, err := fn(b, now)
		if err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, &next); err != nil {
			return err
		}
		if err := s.syncRoom(ctx, tx, b, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.Booking{}, notFoundAs(err, ErrBookingNotFound, "booking %d", id)
	}
	return out, nil
}

func (s *Service) syncRoom(ctx context.Context, tx *repository.Tx, prev, next domain.Booking) error {
	switch {
	case domain.ReleasesRoom(prev.Status, next.Status):
		_, err := s.occupancy.Release(ctx, tx, next.RoomID)
		return err
	case next.Status == domain.BookingCheckedIn && prev.Status != domain.BookingCheckedIn:
		_, err := s.occupancy.Refresh(ctx, tx, next.RoomID)
		return err
	}
	return nil
}

func (s *Service) notify(ctx context.Context, t notification.EventType, b domain.Booking, reason string) {
	notification.Deliver(ctx, s.notifier, s.log, notification.Event{
		Type:          t,
		BookingID:     b.ID,
		UserID:        b.StudentID,
		HostelID:      b.HostelID,
		RoomID:        b.RoomID,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Amount:        b.AmountDue,
		Reason:        reason,
		At:            s.Now(),
	})
}

func (s *Service) observe(err error) error {
	if errors.Is(err, repository.ErrLockTimeout) {
		metrics.LockTimeouts.Inc()
	}
	return err
}

// notFoundAs replaces a bare repository not-found with a module error.
func notFoundAs(err error, target *apperror.Error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.Wrapf(target, format, args...)
	}
	return err
}
