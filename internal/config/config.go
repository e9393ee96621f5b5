package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port string

	RedisURL  string
	RedisPass string
	RedisDB   int

	// JWTSecret signs admin bearer tokens; AdminToken is the credential
	// exchanged for one.
	JWTSecret  string
	AdminToken string

	// OperatorKey is the hex-encoded private key used to sign placeBet,
	// settle and admin transactions. Empty means the gateway runs in
	// read-only mode and rejects write endpoints.
	OperatorKey string

	Network Network

	AutoSettle   bool
	PollInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		OperatorKey: os.Getenv("OPERATOR_PRIVATE_KEY"),
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}
	cfg.RedisDB = db

	cfg.AutoSettle, err = strconv.ParseBool(getEnv("AUTO_SETTLE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_SETTLE: %v", err)
	}

	cfg.PollInterval, err = time.ParseDuration(getEnv("POLL_INTERVAL", "7.5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %v", err)
	}

	network, err := SelectNetwork(getEnv("NETWORK", "mainnet"))
	if err != nil {
		return nil, err
	}
	cfg.Network = network

	if cfg.JWTSecret == "" && cfg.AdminToken != "" {
		return nil, fmt.Errorf("JWT_SECRET is required when ADMIN_TOKEN is set")
	}

	return cfg, nil
}

// ReadOnly reports whether the gateway has no signing key and can only
// serve read endpoints.
func (c *Config) ReadOnly() bool {
	return c.OperatorKey == ""
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
