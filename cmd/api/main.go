package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"hostelbooking/internal/cache"
	"hostelbooking/internal/config"
	"hostelbooking/internal/database"
	"hostelbooking/internal/gateway"
	"hostelbooking/internal/pkg/logger"
	"hostelbooking/internal/repository"
)

func main() {
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

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.EnableDecoderDisallowUnknownFields = true

	db, err := database.Connect(cfg.Database.URL,
		database.WithLogger(log),
		database.WithLogLevel(gormlogger.Warn),
		database.WithPool(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime),
	)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
	}
	store := repository.NewStore(db, cfg.Database.LockTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, sweeps run without a shared lease")
		} else {
			defer redisClient.Close()
		}
	}
	hostname, _ := os.Hostname()
	lease := cache.NewLease(redisClient, fmt.Sprintf("%s:%d", hostname, os.Getpid()))

	gw := gateway.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	if !gw.Configured() {
		log.Warn("razorpay credentials missing, deposit registration is disabled")
	}

	a := newApp(cfg, log, store, gw, lease)
	defer a.hub.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: a.router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			return a.scheduler.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
	log.Info("server stopped")
}
