package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/metrics"
	"hostelbooking/internal/notification"
)

const (
	JobMarkOverdue = "mark_overdue"
	JobAutoCancel  = "auto_cancel_unpaid"
	JobNoShow      = "mark_no_show"
)

// errUnchanged marks a candidate that no longer needs the transition once
// read under its lock.
var errUnchanged = errors.New("unchanged")

// MarkOverdueBookings flips paymentStatus to overdue on unpaid bookings past
// their due date. Already-overdue bookings are never selected, so reruns are
// no-ops.
func (s *Service) MarkOverdueBookings(ctx context.Context, now time.Time) (SweepResult, error) {
	ids, err := s.store.Bookings().OverdueCandidates(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		return SweepResult{Job: JobMarkOverdue}, err
	}
	return s.sweep(ctx, JobMarkOverdue, ids, notification.PaymentOverdue, func(b domain.Booking) (domain.Booking, error) {
		next, changed := domain.MarkOverdue(b, now)
		if !changed {
			return b, errUnchanged
		}
		return next, nil
	})
}

// AutoCancelUnpaid cancels pending bookings that stayed overdue past the
// grace period, with reason non-payment.
func (s *Service) AutoCancelUnpaid(ctx context.Context, now time.Time) (SweepResult, error) {
	grace := s.cfg.AutoCancelGrace
	ids, err := s.store.Bookings().AutoCancelCandidates(ctx, now.Add(-grace), s.cfg.SweepBatchSize)
	if err != nil {
		return SweepResult{Job: JobAutoCancel}, err
	}
	return s.sweep(ctx, JobAutoCancel, ids, notification.BookingCancelled, func(b domain.Booking) (domain.Booking, error) {
		if !domain.AutoCancelDue(b, now, grace) {
			return b, errUnchanged
		}
		return domain.AutoCancel(b, now, grace)
	})
}

// MarkNoShows closes confirmed bookings whose check-in day ended without a
// check-in.
func (s *Service) MarkNoShows(ctx context.Context, now time.Time) (SweepResult, error) {
	ids, err := s.store.Bookings().NoShowCandidates(ctx, domain.DateOf(now), s.cfg.SweepBatchSize)
	if err != nil {
		return SweepResult{Job: JobNoShow}, err
	}
	return s.sweep(ctx, JobNoShow, ids, notification.BookingNoShow, func(b domain.Booking) (domain.Booking, error) {
		if !domain.NoShowDue(b, now) {
			return b, errUnchanged
		}
		return domain.MarkNoShow(b, now)
	})
}

// sweep applies fn to each candidate in its own transaction. One failing
// booking is logged and does not stop the rest.
func (s *Service) sweep(ctx context.Context, job string, ids []int64, ev notification.EventType, fn func(domain.Booking) (domain.Booking, error)) (SweepResult, error) {
	res := SweepResult{Job: job, Candidates: len(ids)}
	log := s.log.WithField("job", job)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		next, err := s.apply(ctx, nil, id, time.Time{}, func(b domain.Booking, _ time.Time) (domain.Booking, error) {
			return fn(b)
		})
		switch {
		case errors.Is(err, errUnchanged):
			res.Skipped++
			metrics.SweepItems.WithLabelValues(job, "skipped").Inc()
			continue
		case err != nil:
			res.Failed++
			metrics.SweepItems.WithLabelValues(job, "failed").Inc()
			_ = s.observe(err)
			log.WithError(err).WithField("booking_id", id).Error("sweep item failed")
			continue
		}

		res.Changed++
		metrics.SweepItems.WithLabelValues(job, "changed").Inc()
		metrics.BookingTransitions.WithLabelValues(job).Inc()
		s.notify(ctx, ev, next, next.CancellationReason)
	}

	log.WithFields(logrus.Fields{
		"candidates": res.Candidates,
		"changed":    res.Changed,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
	}).Info("sweep finished")
	return res, nil
}
