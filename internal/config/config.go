// Package config loads application configuration from the environment once
// at startup. Nothing else in the codebase reads env vars at call time;
// every tunable is threaded in from here.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	BcryptCost     int           // bcrypt cost for password hashing
	InviteRequired bool          // whether signup requires an unused invite code
	SessionTTL     time.Duration // sliding session expiry; 0 disables expiry
	AmqpURL        string        // message broker URL; empty disables event publishing
}

// Load reads a .env file if present, then the environment. Required
// variables cause a fatal log when missing.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "3000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		BcryptCost:     envInt("BCRYPT_COST", bcrypt.DefaultCost),
		InviteRequired: getenv("INVITE_REQUIRED", "false") == "true",
		SessionTTL:     envDur("SESSION_TTL", 0),
		AmqpURL:        os.Getenv("AMQP_URL"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
