// Package config loads application configuration from environment variables.
// Required variables abort start-up with a fatal log; optional ones fall back
// to defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/venuehub/venuehub/internal/database"
)

// Config holds all runtime configuration values.
type Config struct {
	Env  string // application environment (dev, test, prod)
	Port string // HTTP port to listen on

	MySQL    database.MySQLOptions
	MongoURI string
	MongoDB  string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	BcryptCost        int

	AllowedOrigins        []string
	AllowedOriginSuffixes []string
	PublicDir             string

	AMQPURL         string // empty disables publishing and the consumer
	FavoritesLogDir string
}

// Load reads configuration values from environment variables.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),
		MySQL: database.MySQLOptions{
			User: must("DB_USER"),
			Pass: os.Getenv("DB_PASS"),
			Host: must("DB_HOST"),
			Port: must("DB_PORT"),
			Name: must("DB_NAME"),
		},
		MongoURI: mustOneOf("MONGO_URL", "MONGODB_URI", "DATABASE_URL"),
		MongoDB:  envStr("MONGO_DB", "venuehub"),

		SessionSecret:     must("SESSION_SECRET"),
		SessionTTL:        envDur("SESSION_TTL", 5*time.Minute),
		SessionCookieName: envStr("SESSION_COOKIE_NAME", "sid"),
		BcryptCost:        envInt("BCRYPT_COST", 10),

		AllowedOrigins:        envList("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		AllowedOriginSuffixes: envList("ALLOWED_ORIGIN_SUFFIXES", ".railway.app,.netlify.app"),
		PublicDir:             os.Getenv("PUBLIC_DIR"),

		AMQPURL:         firstEnv("RABBITMQ_URL", "AMQP_URL"),
		FavoritesLogDir: envStr("FAVORITES_LOG_DIR", "logs"),
	}
}

// IsProd reports whether the app runs in production. Cookies are marked
// Secure only there.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustOneOf is must() for settings with several accepted names.
func mustOneOf(keys ...string) string {
	if v := firstEnv(keys...); v != "" {
		return v
	}
	log.Fatalf("missing required env var: one of %s", strings.Join(keys, ", "))
	return ""
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

// envList splits a comma separated variable, dropping blanks.
func envList(k, d string) []string {
	var out []string
	for _, p := range strings.Split(envStr(k, d), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
