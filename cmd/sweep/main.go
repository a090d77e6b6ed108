package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"hostelbooking/internal/config"
	"hostelbooking/internal/database"
	"hostelbooking/internal/modules/booking"
	"hostelbooking/internal/modules/eligibility"
	"hostelbooking/internal/modules/occupancy"
	"hostelbooking/internal/modules/scheduler"
	"hostelbooking/internal/notification"
	"hostelbooking/internal/pkg/logger"
	"hostelbooking/internal/repository"
)

// sweep runs lifecycle jobs once and exits, for use from cron when the API
// runs with the scheduler disabled.
func main() {
	only := flag.String("job", "", "run a single job by name (default: all, in order)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database.URL, database.WithLogger(log))
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	store := repository.NewStore(db, cfg.Database.LockTimeout)

	tracker := occupancy.NewTracker(store, log)
	bookings := booking.NewService(store, eligibility.New(), tracker, notification.NewLogNotifier(log), log, booking.Config{
		BookingFee:      cfg.Booking.Fee,
		PaymentWindow:   cfg.Booking.PaymentWindow,
		AutoCancelGrace: cfg.Booking.AutoCancelGrace,
		SweepBatchSize:  cfg.Booking.SweepBatchSize,
	})
	sched := scheduler.New(scheduler.LifecycleJobs(bookings, tracker, scheduler.DefaultIntervals()), nil, log, scheduler.Config{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	names := sched.Jobs()
	if *only != "" {
		names = []string{*only}
	}

	failed := 0
	for _, name := range names {
		report, err := sched.RunNow(ctx, name)
		if err != nil {
			failed++
			log.WithError(err).WithField("job", name).Error("sweep failed")
			continue
		}
		log.WithFields(logrus.Fields{"job": name, "report": report}).Info("sweep completed")
	}
	if failed > 0 {
		os.Exit(1)
	}
}
