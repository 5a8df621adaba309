package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	AuthSecret      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	StatsCacheTTL   time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	JaegerEndpoint  string
	Env             string
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration
	PayrollInterval time.Duration
	WorkerPoolSize  int
	Business        BusinessRules
}

const (
	defaultRunAddress      = ":8080"
	defaultAuthSecret      = "change-me-in-production"
	defaultStatsCacheTTL   = 30 * time.Second
	defaultKafkaTopic      = "erp-events"
	defaultEnv             = "development"
	defaultShutdownTimeout = 10 * time.Second
	defaultWorkerPoolSize  = 4
)

// Production reports whether the service runs with production defaults.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load parses configuration from .env, environment variables and process flags.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command-line arguments.
func LoadArgs(args []string) (*Config, error) {
	// A missing .env is fine; the environment alone is a complete source.
	_ = godotenv.Load()
	return load(args, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	statsCacheTTL, err := getDuration(lookup, "STATS_CACHE_TTL", defaultStatsCacheTTL)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}
	payrollInterval, err := getDuration(lookup, "PAYROLL_SCHEDULE_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		AuthSecret:      getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		RedisAddr:       getString(lookup, "REDIS_ADDR", ""),
		RedisPassword:   getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:         getInt(lookup, "REDIS_DB", 0),
		StatsCacheTTL:   statsCacheTTL,
		KafkaBrokers:    splitList(getString(lookup, "KAFKA_BROKERS", "")),
		KafkaTopic:      getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		JaegerEndpoint:  getString(lookup, "JAEGER_ENDPOINT", ""),
		Env:             getString(lookup, "ENV", defaultEnv),
		LogLevel:        getString(lookup, "LOG_LEVEL", ""),
		LogFile:         getString(lookup, "LOG_FILE", ""),
		ShutdownTimeout: shutdownTimeout,
		PayrollInterval: payrollInterval,
		WorkerPoolSize:  getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
	}

	fs := pflag.NewFlagSet("erpcore", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	// Subcommand flags such as --tenant belong to the CLI, not to the service config.
	fs.ParseErrorsWhitelist.UnknownFlags = true

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		payrollIntervalStr = cfg.PayrollInterval.String()
		businessPath       = getString(lookup, "BUSINESS_CONFIG", "")
	)

	fs.StringVarP(&cfg.RunAddress, "address", "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVarP(&cfg.DatabaseURI, "database", "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing bearer tokens")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payroll workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&payrollIntervalStr, "payroll-interval", payrollIntervalStr, "Interval between scheduled payroll runs")
	fs.StringVar(&businessPath, "business-config", businessPath, "Path to business rules YAML")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.PayrollInterval, err = time.ParseDuration(payrollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid payroll interval: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if cfg.Business, err = LoadBusinessRules(businessPath); err != nil {
		return nil, err
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.StatsCacheTTL < 0 {
		cfg.StatsCacheTTL = 0
	}

	if cfg.PayrollInterval < 0 {
		cfg.PayrollInterval = 0
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

func getDuration(lookup envLookup, key string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
