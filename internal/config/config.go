package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	JWTSecret          string
	TokenTTL           time.Duration
	ShutdownTimeout    time.Duration
	LogLevel           string
	StaffLogins        []string
	DefaultDeliveryFee decimal.Decimal
	PickupLocation     string
	TrackGracePeriod   time.Duration
	ResyncInterval     time.Duration
	HistoryLimit       int
	StepRetryInterval  time.Duration
	StepRetryBatch     int
	StepRetryWorkers   int
	StepMaxAttempts    int
	RabbitMQURL        string
	OrderExchange      string
}

const (
	defaultRunAddress        = ":8080"
	defaultJWTSecret         = "change-me-in-production"
	defaultTokenTTL          = 24 * time.Hour
	defaultShutdownTimeout   = 10 * time.Second
	defaultLogLevel          = "info"
	defaultDeliveryFee       = "5.00"
	defaultPickupLocation    = "Retirada no balcão"
	defaultTrackGracePeriod  = 30 * time.Second
	defaultResyncInterval    = 30 * time.Second
	defaultHistoryLimit      = 20
	defaultStepRetryInterval = 5 * time.Second
	defaultStepRetryBatch    = 32
	defaultStepRetryWorkers  = 2
	defaultStepMaxAttempts   = 5
	defaultOrderExchange     = "bakehouse.orders"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		JWTSecret:         getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:          getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
		PickupLocation:    getString(lookup, "PICKUP_LOCATION", defaultPickupLocation),
		TrackGracePeriod:  getDuration(lookup, "TRACK_GRACE_PERIOD", defaultTrackGracePeriod),
		ResyncInterval:    getDuration(lookup, "RESYNC_INTERVAL", defaultResyncInterval),
		HistoryLimit:      getInt(lookup, "HISTORY_LIMIT", defaultHistoryLimit),
		StepRetryInterval: getDuration(lookup, "STEP_RETRY_INTERVAL", defaultStepRetryInterval),
		StepRetryBatch:    getInt(lookup, "STEP_RETRY_BATCH", defaultStepRetryBatch),
		StepRetryWorkers:  getInt(lookup, "STEP_RETRY_WORKERS", defaultStepRetryWorkers),
		StepMaxAttempts:   getInt(lookup, "STEP_MAX_ATTEMPTS", defaultStepMaxAttempts),
		RabbitMQURL:       getString(lookup, "RABBITMQ_URL", ""),
		OrderExchange:     getString(lookup, "ORDER_EXCHANGE", defaultOrderExchange),
	}

	fs := flag.NewFlagSet("bakehouse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		deliveryFeeStr     = getString(lookup, "DEFAULT_DELIVERY_FEE", defaultDeliveryFee)
		staffLoginsStr     = getString(lookup, "STAFF_LOGINS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&deliveryFeeStr, "delivery-fee", deliveryFeeStr, "Default delivery fee")
	fs.StringVar(&staffLoginsStr, "staff", staffLoginsStr, "Comma separated logins registered as staff")
	fs.StringVar(&cfg.RabbitMQURL, "amqp", cfg.RabbitMQURL, "RabbitMQ URL for order event relay")
	fs.IntVar(&cfg.StepRetryWorkers, "retry-workers", cfg.StepRetryWorkers, "Number of concurrent saga step workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.DefaultDeliveryFee, err = decimal.NewFromString(deliveryFeeStr); err != nil {
		return nil, fmt.Errorf("invalid delivery fee: %w", err)
	}
	if cfg.DefaultDeliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.StaffLogins = splitList(staffLoginsStr)

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TrackGracePeriod <= 0 {
		cfg.TrackGracePeriod = defaultTrackGracePeriod
	}

	if cfg.ResyncInterval <= 0 {
		cfg.ResyncInterval = defaultResyncInterval
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	if cfg.StepRetryInterval <= 0 {
		cfg.StepRetryInterval = defaultStepRetryInterval
	}

	if cfg.StepRetryBatch <= 0 {
		cfg.StepRetryBatch = defaultStepRetryBatch
	}

	if cfg.StepRetryWorkers <= 0 {
		cfg.StepRetryWorkers = defaultStepRetryWorkers
	}

	if cfg.StepMaxAttempts <= 0 {
		cfg.StepMaxAttempts = defaultStepMaxAttempts
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

// IsStaff reports whether login was configured as a staff account.
func (c *Config) IsStaff(login string) bool {
	for _, staff := range c.StaffLogins {
		if strings.EqualFold(staff, login) {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
