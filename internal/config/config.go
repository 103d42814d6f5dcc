package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the tunable parameters for the API process. Values load
// from environment variables with defaults good enough to run locally.
type Config struct {
	Port string

	AdminToken string

	OTPTTL         time.Duration
	OTPMaxAttempts int

	PendingRideTTL time.Duration
	SweepInterval  time.Duration

	LogLevel string
}

func defaultConfig() Config {
	return Config{
		Port:           "8080",
		OTPTTL:         10 * time.Minute,
		OTPMaxAttempts: 5,
		PendingRideTTL: 30 * time.Minute,
		SweepInterval:  time.Minute,
		LogLevel:       "info",
	}
}

func Load() (Config, error) {
	cfg := defaultConfig()
	var errs []error

	setStringFromEnv(&cfg.Port, "PORT")
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")

	setDurationFromEnv(&cfg.OTPTTL, "OTP_TTL", &errs)
	setIntFromEnv(&cfg.OTPMaxAttempts, "OTP_MAX_ATTEMPTS", &errs)
	setDurationFromEnv(&cfg.PendingRideTTL, "PENDING_RIDE_TTL", &errs)
	setDurationFromEnv(&cfg.SweepInterval, "SWEEP_INTERVAL", &errs)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.OTPMaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("OTP_MAX_ATTEMPTS must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setIntFromEnv(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}
