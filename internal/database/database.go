package database

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type options struct {
	log          logrus.FieldLogger
	logLevel     logger.LogLevel
	maxOpenConns int
	maxIdleConns int
	connLifetime time.Duration
}

type Option func(*options)

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) { o.logLevel = level }
}

// WithPool sets connection pool limits. maxOpen=1 serializes every
// transaction, which the in-memory SQLite tests rely on.
func WithPool(maxOpen, maxIdle int, lifetime time.Duration) Option {
	return func(o *options) {
		o.maxOpenConns = maxOpen
		o.maxIdleConns = maxIdle
		o.connLifetime = lifetime
	}
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{log: logrus.StandardLogger(), logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(o.logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	if IsPostgres(dsn) {
		o.log.Info("connecting to PostgreSQL")
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		o.log.WithField("dsn", dsn).Info("using SQLite for local development")
		db, err = gorm.Open(
			gormsqlite.New(gormsqlite.Config{
				DriverName: "sqlite",
				DSN:        dsn,
			}),
			cfg,
		)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.maxOpenConns)
	}
	if o.maxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.maxIdleConns)
	}
	if o.connLifetime > 0 {
		sqlDB.SetConnMaxLifetime(o.connLifetime)
	}
	return db, nil
}
