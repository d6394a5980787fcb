// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables. Environment variables win over the file, which
// wins over flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/atinyakov/canteen/internal/session"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// SignKey is the hex-encoded HMAC key for session tokens.
	SignKey string `json:"session_sign_key"`

	// EncryptKey is the hex-encoded AES key for session tokens.
	EncryptKey string `json:"session_encrypt_key"`

	// SessionAgeDays is the session cookie lifetime in days.
	SessionAgeDays int `json:"session_age_days"`

	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// RedisAddr enables login throttling when set.
	RedisAddr string `json:"redis_address"`

	MaxLoginAttempts     int `json:"max_login_attempts"`
	LoginCooldownMinutes int `json:"login_cooldown_minutes"`

	LogLevel string `json:"log_level"`
}

// Defaults used when a value is not configured or is not positive.
const (
	DefaultSessionAgeDays       = 7
	DefaultMaxLoginAttempts     = 5
	DefaultLoginCooldownMinutes = 15
)

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.SignKey, "sign-key", "", "hex-encoded session signing key")
	flag.StringVar(&options.EncryptKey, "encrypt-key", "", "hex-encoded session encryption key")
	flag.IntVar(&options.SessionAgeDays, "session-age", DefaultSessionAgeDays, "session lifetime in days")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to server TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to server TLS key")
	flag.StringVar(&options.RedisAddr, "redis", "", "redis address for login throttling")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level")
	options.MaxLoginAttempts = DefaultMaxLoginAttempts
	options.LoginCooldownMinutes = DefaultLoginCooldownMinutes
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := options.loadFile(); err != nil {
		log.Fatalf("error while loading config file: %v", err)
	}

	options.applyEnv(os.Getenv)

	return options
}

// loadFile merges the JSON config file into o. A missing file is not an error.
func (o *Options) loadFile() error {
	if o.Config == "" {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", o.Config, err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parse %s: %w", o.Config, err)
	}
	return nil
}

func (o *Options) applyEnv(getenv func(string) string) {
	if v := getenv("SERVER_ADDRESS"); v != "" {
		o.Port = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := getenv("SESSION_SIGN_KEY"); v != "" {
		o.SignKey = v
	}
	if v := getenv("SESSION_ENCRYPT_KEY"); v != "" {
		o.EncryptKey = v
	}
	if v := getenv("REDIS_ADDRESS"); v != "" {
		o.RedisAddr = v
	}
	if v := getenv("SESSION_AGE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			o.SessionAgeDays = days
		}
	}
}

// SessionAge is the configured session lifetime, falling back to the default
// for non-positive values.
func (o *Options) SessionAge() time.Duration {
	days := o.SessionAgeDays
	if days <= 0 {
		days = DefaultSessionAgeDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// LoginAttempts is the number of unsuccessful logins allowed per cooldown
// window, falling back to the default for non-positive values.
func (o *Options) LoginAttempts() int {
	if o.MaxLoginAttempts <= 0 {
		return DefaultMaxLoginAttempts
	}
	return o.MaxLoginAttempts
}

// LoginCooldown is the lockout window after too many failed logins, falling
// back to the default for non-positive values.
func (o *Options) LoginCooldown() time.Duration {
	minutes := o.LoginCooldownMinutes
	if minutes <= 0 {
		minutes = DefaultLoginCooldownMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// SessionKeys decodes and validates the session secrets. Both are required.
func (o *Options) SessionKeys() (session.Keys, error) {
	if o.SignKey == "" || o.EncryptKey == "" {
		return session.Keys{}, errors.New("session sign and encrypt keys are required")
	}
	return session.ParseKeys(o.SignKey, o.EncryptKey)
}
