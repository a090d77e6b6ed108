package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/metrics"
	"hostelbooking/internal/notification"
	"hostelbooking/internal/pkg/apperror"
	"hostelbooking/internal/repository"
)

type Service struct {
	store    *repository.Store
	notifier notification.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *repository.Store, notifier notification.Notifier, log logrus.FieldLogger, opts ...Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		store:    store,
		notifier: notifier,
		log:      log.WithField("component", "payment"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPayment credits amount against the booking. The booking row is
// locked before it is read, so concurrent payments see each other's
// amountDue and can never overpay.
func (s *Service) RecordPayment(ctx context.Context, bookingID int64, req RecordPaymentRequest) (Receipt, error) {
	method := domain.PaymentMethod(req.Method)
	if !acceptedMethods[method] {
		return Receipt{}, apperror.Wrapf(ErrInvalidMethod, "method %q is not accepted", req.Method)
	}

	now := s.now()
	var out Receipt
	err := s.store.WithBookingLock(ctx, bookingID, func(tx *repository.Tx, b domain.Booking) error {
		next, err := domain.ApplyPayment(b, req.Amount)
		if err != nil {
			return err
		}
		p := domain.Payment{
			BookingID:      b.ID,
			Amount:         req.Amount,
			Method:         method,
			Type:           domain.PaymentTypeBooking,
			TransactionRef: referenceOr(req.Reference),
			PaymentDate:    now.UTC(),
			ReceivedBy:     req.ReceivedBy,
		}
		if err := tx.Payments().Create(ctx, &p); err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, &next); err != nil {
			return err
		}
		out = Receipt{Payment: p, Booking: domain.Project(next, now)}
		return nil
	})
	if err != nil {
		return Receipt{}, s.fail(err, bookingID)
	}

	s.recorded(ctx, out, notification.PaymentRecorded)
	return out, nil
}

// PayBookingFee settles the flat booking fee. The fee is tracked apart from
// the booking total and does not change amountDue.
func (s *Service) PayBookingFee(ctx context.Context, actor domain.Actor, bookingID int64, req BookingFeeRequest) (Receipt, error) {
	method := domain.PaymentMethod(req.Method)
	if !acceptedMethods[method] {
		return Receipt{}, apperror.Wrapf(ErrInvalidMethod, "method %q is not accepted", req.Method)
	}

	now := s.now()
	var out Receipt
	err := s.store.WithBookingLock(ctx, bookingID, func(tx *repository.Tx, b domain.Booking) error {
		if !actor.CanAccess(b) {
			return apperror.Wrapf(ErrBookingNotFound, "booking %d", bookingID)
		}
		if b.Status == domain.BookingCancelled {
			return apperror.Wrapf(domain.ErrBookingCancelled, "booking %d cannot accept payments", b.ID)
		}
		if b.BookingFeePaid {
			return apperror.Wrapf(domain.ErrFeeAlreadyPaid, "booking fee for booking %d is already settled", b.ID)
		}

		p := domain.Payment{
			BookingID:      b.ID,
			Amount:         b.BookingFee,
			Method:         method,
			Type:           domain.PaymentTypeBookingFee,
			TransactionRef: referenceOr(req.Reference),
			PaymentDate:    now.UTC(),
		}
		if actor.IsStaff() {
			p.ReceivedBy = actor.UserID
		}
		if err := tx.Payments().Create(ctx, &p); err != nil {
			return err
		}
		b.BookingFeePaid = true
		if err := tx.Bookings().Save(ctx, &b); err != nil {
			return err
		}
		out = Receipt{Payment: p, Booking: domain.Project(b, now)}
		return nil
	})
	if err != nil {
		return Receipt{}, s.fail(err, bookingID)
	}

	s.recorded(ctx, out, notification.BookingFeePaid)
	return out, nil
}

func (s *Service) ListPayments(ctx context.Context, actor domain.Actor, bookingID int64) ([]domain.Payment, error) {
	b, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Wrapf(ErrBookingNotFound, "booking %d", bookingID)
		}
		return nil, err
	}
	if !actor.CanAccess(b) {
		return nil, apperror.Wrapf(ErrBookingNotFound, "booking %d", bookingID)
	}
	return s.store.Payments().ListByBooking(ctx, bookingID)
}

func (s *Service) recorded(ctx context.Context, r Receipt, ev notification.EventType) {
	metrics.PaymentsRecorded.WithLabelValues(string(r.Payment.Type)).Inc()
	metrics.PaymentAmount.WithLabelValues(string(r.Payment.Type)).Add(float64(r.Payment.Amount))
	s.log.WithFields(logrus.Fields{
		"booking_id":     r.Booking.ID,
		"payment_id":     r.Payment.ID,
		"amount":         r.Payment.Amount,
		"type":           r.Payment.Type,
		"payment_status": r.Booking.PaymentStatus,
	}).Info("payment recorded")

	notification.Deliver(ctx, s.notifier, s.log, notification.Event{
		Type:          ev,
		BookingID:     r.Booking.ID,
		UserID:        r.Booking.StudentID,
		HostelID:      r.Booking.HostelID,
		RoomID:        r.Booking.RoomID,
		Status:        string(r.Booking.Status),
		PaymentStatus: string(r.Booking.PaymentStatus),
		Amount:        r.Payment.Amount,
		At:            r.Payment.PaymentDate,
	})
}

func (s *Service) fail(err error, bookingID int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.Wrapf(ErrBookingNotFound, "booking %d", bookingID)
	case errors.Is(err, repository.ErrLockTimeout):
		metrics.LockTimeouts.Inc()
	}
	return err
}

// referenceOr keeps the caller's reference or generates one.
func referenceOr(ref string) string {
	if ref != "" {
		return ref
	}
	return "pay_" + uuid.NewString()
}
