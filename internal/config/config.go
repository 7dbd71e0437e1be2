package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	TokenSecret string

	// Risk scoring.
	RiskAmountCap float64

	// Session burst detection.
	BurstWindow    time.Duration
	BurstThreshold int

	// Login-origin history consulted by the risk scorer.
	OriginHistoryLimit int

	// Payment-status polling. Empty PaymentProviderAddress disables the worker.
	PaymentProviderAddress string
	PaymentPollInterval    time.Duration
	PaymentBatchSize       int
	WorkerPoolSize         int

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress          = ":8080"
	defaultTokenSecret         = "change-me-in-production"
	defaultRiskAmountCap       = 20000
	defaultBurstWindow         = time.Hour
	defaultBurstThreshold      = 20
	defaultOriginHistoryLimit  = 20
	defaultPaymentPollInterval = 5 * time.Second
	defaultPaymentBatchSize    = 32
	defaultWorkerPoolSize      = 4
	defaultShutdownTimeout     = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		TokenSecret:            getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		RiskAmountCap:          getFloat(lookup, "RISK_AMOUNT_CAP", defaultRiskAmountCap),
		BurstWindow:            getDuration(lookup, "BURST_WINDOW", defaultBurstWindow),
		BurstThreshold:         getInt(lookup, "BURST_THRESHOLD", defaultBurstThreshold),
		OriginHistoryLimit:     getInt(lookup, "ORIGIN_HISTORY_LIMIT", defaultOriginHistoryLimit),
		PaymentProviderAddress: getString(lookup, "PAYMENT_PROVIDER_ADDRESS", ""),
		PaymentPollInterval:    getDuration(lookup, "PAYMENT_POLL_INTERVAL", defaultPaymentPollInterval),
		PaymentBatchSize:       getInt(lookup, "PAYMENT_POLL_BATCH", defaultPaymentBatchSize),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("stitchfab", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		burstWindowStr     = cfg.BurstWindow.String()
		pollIntervalStr    = cfg.PaymentPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing auth tokens")
	fs.Float64Var(&cfg.RiskAmountCap, "risk-cap", cfg.RiskAmountCap, "Order amount treated as the normal ceiling by risk scoring")
	fs.StringVar(&burstWindowStr, "burst-window", burstWindowStr, "Trailing window for session burst detection")
	fs.IntVar(&cfg.BurstThreshold, "burst-threshold", cfg.BurstThreshold, "Sessions per origin within the window before flagging")
	fs.IntVar(&cfg.OriginHistoryLimit, "origin-history", cfg.OriginHistoryLimit, "Login origins retained per account for risk checks")
	fs.StringVar(&cfg.PaymentProviderAddress, "payment-provider", cfg.PaymentProviderAddress, "Payment status provider base URL (empty disables polling)")
	fs.StringVar(&pollIntervalStr, "payment-poll-interval", pollIntervalStr, "Interval between payment status polls")
	fs.IntVar(&cfg.PaymentBatchSize, "payment-poll-batch", cfg.PaymentBatchSize, "Maximum orders per payment polling batch")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.BurstWindow, err = time.ParseDuration(burstWindowStr); err != nil {
		return nil, fmt.Errorf("invalid burst window: %w", err)
	}

	if cfg.PaymentPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid payment poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = string(content)
	}

	if cfg.RiskAmountCap <= 0 {
		cfg.RiskAmountCap = defaultRiskAmountCap
	}

	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = defaultBurstWindow
	}

	if cfg.BurstThreshold <= 0 {
		cfg.BurstThreshold = defaultBurstThreshold
	}

	if cfg.OriginHistoryLimit <= 0 {
		cfg.OriginHistoryLimit = defaultOriginHistoryLimit
	}

	if cfg.PaymentPollInterval <= 0 {
		cfg.PaymentPollInterval = defaultPaymentPollInterval
	}

	if cfg.PaymentBatchSize <= 0 {
		cfg.PaymentBatchSize = defaultPaymentBatchSize
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
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

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
