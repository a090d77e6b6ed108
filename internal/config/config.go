package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Server struct {
		Port               int           `mapstructure:"port"`
		CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Database struct {
		URL             string        `mapstructure:"url"`
		LockTimeout     time.Duration `mapstructure:"lock_timeout"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		AutoMigrate     bool          `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`

	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`

	Booking struct {
		Fee             int64         `mapstructure:"fee"`
		PaymentWindow   time.Duration `mapstructure:"payment_window"`
		AutoCancelGrace time.Duration `mapstructure:"auto_cancel_grace"`
		SweepBatchSize  int           `mapstructure:"sweep_batch_size"`
		StrictGender    bool          `mapstructure:"strict_gender"`
	} `mapstructure:"booking"`

	Scheduler struct {
		Enabled     bool          `mapstructure:"enabled"`
		Tick        time.Duration `mapstructure:"tick"`
		Jitter      time.Duration `mapstructure:"jitter"`
		MarkOverdue time.Duration `mapstructure:"mark_overdue"`
		AutoCancel  time.Duration `mapstructure:"auto_cancel"`
		NoShow      time.Duration `mapstructure:"no_show"`
		Reconcile   time.Duration `mapstructure:"reconcile"`
	} `mapstructure:"scheduler"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Razorpay struct {
		KeyID     string `mapstructure:"key_id"`
		KeySecret string `mapstructure:"key_secret"`
	} `mapstructure:"razorpay"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Load reads configs/config.yaml (or CONFIG_FILE) when present, then
// environment variables such as DATABASE_URL or SCHEDULER_TICK. A .env file
// in the working directory is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigFile(v.GetString("config_file"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.JWT.Secret = strings.TrimSpace(cfg.JWT.Secret)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "configs/config.yaml")
	v.SetDefault("app_env", "dev")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.url", "file:hostel.db?_pragma=busy_timeout(5000)")
	v.SetDefault("database.lock_timeout", "5s")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("booking.fee", 0)
	v.SetDefault("booking.payment_window", "168h")
	v.SetDefault("booking.auto_cancel_grace", "168h")
	v.SetDefault("booking.sweep_batch_size", 500)
	v.SetDefault("booking.strict_gender", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.tick", "1m")
	v.SetDefault("scheduler.jitter", "2m")
	v.SetDefault("scheduler.mark_overdue", "24h")
	v.SetDefault("scheduler.auto_cancel", "24h")
	v.SetDefault("scheduler.no_show", "24h")
	v.SetDefault("scheduler.reconcile", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Database.LockTimeout <= 0 {
		return fmt.Errorf("DATABASE_LOCK_TIMEOUT must be > 0")
	}
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Booking.Fee < 0 {
		return fmt.Errorf("BOOKING_FEE must be >= 0")
	}
	if cfg.Booking.PaymentWindow <= 0 {
		return fmt.Errorf("BOOKING_PAYMENT_WINDOW must be > 0")
	}
	if cfg.Booking.AutoCancelGrace < 0 {
		return fmt.Errorf("BOOKING_AUTO_CANCEL_GRACE must be >= 0")
	}
	if cfg.Scheduler.Tick <= 0 {
		return fmt.Errorf("SCHEDULER_TICK must be > 0")
	}
	if cfg.Scheduler.Jitter < 0 {
		return fmt.Errorf("SCHEDULER_JITTER must be >= 0")
	}
	for name, d := range map[string]time.Duration{
		"SCHEDULER_MARK_OVERDUE": cfg.Scheduler.MarkOverdue,
		"SCHEDULER_AUTO_CANCEL":  cfg.Scheduler.AutoCancel,
		"SCHEDULER_NO_SHOW":      cfg.Scheduler.NoShow,
		"SCHEDULER_RECONCILE":    cfg.Scheduler.Reconcile,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if (cfg.Razorpay.KeyID == "") != (cfg.Razorpay.KeySecret == "") {
			return fmt.Errorf("in prod/release RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
