package deposit

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
	gateway  PaymentGatewayClient
	notifier notification.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *repository.Store, gateway PaymentGatewayClient, notifier notification.Notifier, log logrus.FieldLogger, opts ...Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		log:      log.WithField("component", "deposit"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyToBooking spends the user's deposit credit on their booking. The
// user row is locked first so two withdrawals cannot both pass the balance
// check, then the booking row so the debit lines up with amountDue. The
// withdrawal, the payment and the booking update commit together.
func (s *Service) ApplyToBooking(ctx context.Context, userID, bookingID, amount int64) (Application, error) {
	if amount <= 0 {
		return Application{}, apperror.Wrapf(domain.ErrInvalidAmount, "amount must be greater than 0, got %d", amount)
	}

	now := s.now()
	var out Application
	err := s.store.InTx(ctx, func(tx *repository.Tx) error {
		if _, err := tx.LockUser(ctx, userID); err != nil {
			return notFoundAs(err, ErrUserNotFound, "user %d", userID)
		}
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, ErrBookingNotFound, "booking %d", bookingID)
		}
		if b.StudentID != userID {
			return apperror.Wrapf(ErrBookingNotFound, "booking %d", bookingID)
		}
		if isClosed(b.Status) {
			return apperror.Wrapf(ErrBookingClosed, "booking %d is %s", b.ID, b.Status)
		}
		if b.AmountDue == 0 {
			return apperror.Wrapf(ErrNothingDue, "booking %d has no amount due", b.ID)
		}

		balance, err := tx.Deposits().Balance(ctx, userID)
		if err != nil {
			return err
		}
		if balance < amount {
			return apperror.Wrapf(ErrInsufficientBalance, "balance %d is below requested %d", balance, amount)
		}

		applied := min(amount, b.AmountDue)
		next, err := domain.ApplyPayment(b, applied)
		if err != nil {
			return err
		}

		withdrawal := domain.Deposit{
			UserID:           userID,
			BookingID:        &b.ID,
			Amount:           -applied,
			Status:           domain.DepositCompleted,
			DepositType:      domain.DepositWithdrawal,
			PaymentReference: "wd_" + uuid.NewString(),
		}
		if err := tx.Deposits().Create(ctx, &withdrawal); err != nil {
			return err
		}
		p := domain.Payment{
			BookingID:      b.ID,
			Amount:         applied,
			Method:         domain.MethodAccountCredit,
			Type:           domain.PaymentTypeDeposit,
			TransactionRef: withdrawal.PaymentReference,
			PaymentDate:    now.UTC(),
		}
		if err := tx.Payments().Create(ctx, &p); err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, &next); err != nil {
			return err
		}

		out = Application{Deposit: withdrawal, Payment: p, Booking: domain.Project(next, now)}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockTimeout) {
			metrics.LockTimeouts.Inc()
		}
		return Application{}, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(domain.PaymentTypeDeposit)).Inc()
	metrics.PaymentAmount.WithLabelValues(string(domain.PaymentTypeDeposit)).Add(float64(out.Payment.Amount))
	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"booking_id": bookingID,
		"requested":  amount,
		"applied":    out.Payment.Amount,
	}).Info("deposit applied to booking")

	notification.Deliver(ctx, s.notifier, s.log, notification.Event{
		Type:          notification.DepositApplied,
		BookingID:     out.Booking.ID,
		UserID:        userID,
		HostelID:      out.Booking.HostelID,
		RoomID:        out.Booking.RoomID,
		Status:        string(out.Booking.Status),
		PaymentStatus: string(out.Booking.PaymentStatus),
		Amount:        out.Payment.Amount,
		At:            now,
	})
	return out, nil
}

// RegisterDeposit records credit from an external payment. The reference is
// verified with the gateway and stored once; registering it again returns
// the stored row with created=false. Captured payments become completed
// credit, anything else is kept as a failed row for audit.
func (s *Service) RegisterDeposit(ctx context.Context, userID int64, reference string, depositType domain.DepositType) (domain.Deposit, bool, error) {
	if depositType == "" {
		depositType = domain.DepositTopUp
	}
	if depositType != domain.DepositTopUp && depositType != domain.DepositSecurity {
		return domain.Deposit{}, false, apperror.Wrapf(ErrInvalidDepositType, "deposit type %q is not one of top_up, security", depositType)
	}

	existing, err := s.existing(ctx, userID, reference)
	if err != nil {
		return domain.Deposit{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return domain.Deposit{}, false, notFoundAs(err, ErrUserNotFound, "user %d", userID)
	}

	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.log.WithError(err).WithField("reference", reference).Warn("deposit verification failed")
		return domain.Deposit{}, false, apperror.Wrapf(ErrGatewayUnavailable, "verify %s", reference)
	}

	d := domain.Deposit{
		UserID:           userID,
		Amount:           v.AmountMinor,
		Status:           domain.DepositFailed,
		DepositType:      depositType,
		PaymentReference: reference,
	}
	if v.Success {
		d.Status = domain.DepositCompleted
	}
	if err := s.store.Deposits().Create(ctx, &d); err != nil {
		// A concurrent registration of the same reference won the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			if existing, lerr := s.existing(ctx, userID, reference); lerr == nil && existing != nil {
				return *existing, false, nil
			}
		}
		return domain.Deposit{}, false, err
	}

	metrics.DepositsRegistered.WithLabelValues(string(d.Status)).Inc()
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"deposit":   d.ID,
		"reference": reference,
		"status":    d.Status,
		"amount":    d.Amount,
	}).Info("deposit registered")
	notification.Deliver(ctx, s.notifier, s.log, notification.Event{
		Type:   notification.DepositRegistered,
		UserID: userID,
		Status: string(d.Status),
		Amount: d.Amount,
		At:     s.now(),
	})
	return d, true, nil
}

func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.store.Deposits().Balance(ctx, userID)
}

func (s *Service) Statement(ctx context.Context, userID int64) (Statement, error) {
	balance, err := s.store.Deposits().Balance(ctx, userID)
	if err != nil {
		return Statement{}, err
	}
	rows, err := s.store.Deposits().ListByUser(ctx, userID)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Balance: balance, Deposits: rows}, nil
}

func (s *Service) existing(ctx context.Context, userID int64, reference string) (*domain.Deposit, error) {
	d, err := s.store.Deposits().GetByReference(ctx, reference)
	if err != nil || d == nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, apperror.Wrapf(ErrReferenceOwned, "reference %s", reference)
	}
	return d, nil
}

// isClosed covers bookings that can no longer take money.
func isClosed(s domain.BookingStatus) bool {
	return s == domain.BookingCancelled || s == domain.BookingCheckedOut
}

func notFoundAs(err error, target *apperror.Error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.Wrapf(target, format, args...)
	}
	return err
}
