package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"hostelbooking/internal/config"
	"hostelbooking/internal/middleware"
	"hostelbooking/internal/modules/booking"
	"hostelbooking/internal/modules/deposit"
	"hostelbooking/internal/modules/eligibility"
	"hostelbooking/internal/modules/occupancy"
	"hostelbooking/internal/modules/payment"
	"hostelbooking/internal/modules/scheduler"
	"hostelbooking/internal/notification"
	"hostelbooking/internal/pkg/jwt"
	"hostelbooking/internal/repository"
)

type app struct {
	router    *gin.Engine
	scheduler *scheduler.Scheduler
	hub       *notification.Hub
}

// newApp wires services and routes. It does not start anything.
func newApp(cfg *config.Config, log logrus.FieldLogger, store *repository.Store, gw deposit.PaymentGatewayClient, lease scheduler.Lease) *app {
	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)

	hub := notification.NewHub()
	notifier := notification.Multi{notification.NewLogNotifier(log), hub}

	tracker := occupancy.NewTracker(store, log)
	validator := eligibility.New(eligibility.WithStrictGender(cfg.Booking.StrictGender))
	bookingService := booking.NewService(store, validator, tracker, notifier, log, booking.Config{
		BookingFee:      cfg.Booking.Fee,
		PaymentWindow:   cfg.Booking.PaymentWindow,
		AutoCancelGrace: cfg.Booking.AutoCancelGrace,
		SweepBatchSize:  cfg.Booking.SweepBatchSize,
	})
	paymentService := payment.NewService(store, notifier, log)
	depositService := deposit.NewService(store, gw, notifier, log)

	sched := scheduler.New(
		scheduler.LifecycleJobs(bookingService, tracker, scheduler.Intervals{
			MarkOverdue: cfg.Scheduler.MarkOverdue,
			AutoCancel:  cfg.Scheduler.AutoCancel,
			NoShow:      cfg.Scheduler.NoShow,
			Reconcile:   cfg.Scheduler.Reconcile,
		}),
		lease,
		log,
		scheduler.Config{Tick: cfg.Scheduler.Tick, Jitter: cfg.Scheduler.Jitter},
	)

	r := gin.New()
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.CORS(cfg.Server.CorsAllowedOrigins))
	r.Use(middleware.Metrics())

	r.GET("/health", health(store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	notification.NewWSHandler(hub, tokens, log).RegisterRoutes(r)

	v1 := r.Group("/api/v1", middleware.JWTAuth(tokens))
	{
		booking.NewHandler(bookingService).RegisterRoutes(v1)
		payment.NewHandler(paymentService).RegisterRoutes(v1)
		deposit.NewHandler(depositService).RegisterRoutes(v1)
		scheduler.NewHandler(sched, tracker).RegisterRoutes(v1)
	}

	return &app{router: r, scheduler: sched, hub: hub}
}

func health(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
