package scheduler

import (
	"context"
	"time"

	"hostelbooking/internal/modules/booking"
	"hostelbooking/internal/modules/occupancy"
)

const JobReconcileOccupancy = "reconcile_occupancy"

type Intervals struct {
	MarkOverdue time.Duration
	AutoCancel  time.Duration
	NoShow      time.Duration
	Reconcile   time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		MarkOverdue: 24 * time.Hour,
		AutoCancel:  24 * time.Hour,
		NoShow:      24 * time.Hour,
		Reconcile:   30 * time.Minute,
	}
}

// LifecycleJobs wires the booking sweeps and occupancy resync. Overdue
// marking is registered before auto-cancel so one tick can do both.
func LifecycleJobs(bookings *booking.Service, tracker *occupancy.Tracker, iv Intervals) []Job {
	return []Job{
		{
			Name:     booking.JobMarkOverdue,
			Interval: iv.MarkOverdue,
			Run: func(ctx context.Context, now time.Time) (any, error) {
				return bookings.MarkOverdueBookings(ctx, now)
			},
		},
		{
			Name:     booking.JobAutoCancel,
			Interval: iv.AutoCancel,
			Run: func(ctx context.Context, now time.Time) (any, error) {
				return bookings.AutoCancelUnpaid(ctx, now)
			},
		},
		{
			Name:     booking.JobNoShow,
			Interval: iv.NoShow,
			Run: func(ctx context.Context, now time.Time) (any, error) {
				return bookings.MarkNoShows(ctx, now)
			},
		},
		{
			Name:     JobReconcileOccupancy,
			Interval: iv.Reconcile,
			Run: func(ctx context.Context, _ time.Time) (any, error) {
				return tracker.ReconcileAll(ctx)
			},
		},
	}
}
