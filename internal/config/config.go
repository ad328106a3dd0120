// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFlag indicates a yes/no setting holds something else.
var ErrInvalidFlag = errors.New("invalid flag value")

// Config holds the application configuration loaded from environment variables.
// Per-group settings (instance, policy, cursor) live in the database.
type Config struct {
	DBPath           string
	PollInterval     time.Duration
	AdaptivePolling  bool
	ListenAddr       string
	MaxNotifications int
	MediaDir         string
	// SecretKey is the 32-byte AES key for credential encryption. Nil when
	// TOOTGROUP_SECRET_KEY is unset; access tokens cannot be stored then.
	SecretKey []byte
}

// HasSecretKey reports whether credential encryption is available.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) == 32
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional. Defaults: TOOTGROUP_DB_PATH (tootgroup.db),
// TOOTGROUP_POLL_INTERVAL (5m), TOOTGROUP_ADAPTIVE_POLLING (false),
// TOOTGROUP_LISTEN_ADDR (127.0.0.1:8080), TOOTGROUP_MAX_NOTIFICATIONS (100),
// TOOTGROUP_MEDIA_DIR (os.TempDir()). TOOTGROUP_SECRET_KEY must be 64 hex
// characters when set.
func Load() (*Config, error) {
	dbPath := "tootgroup.db"
	if v, ok := os.LookupEnv("TOOTGROUP_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	pollInterval := 5 * time.Minute
	if v, ok := os.LookupEnv("TOOTGROUP_POLL_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TOOTGROUP_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("TOOTGROUP_POLL_INTERVAL must be positive, got %q", v)
		}
		pollInterval = parsed
	}

	var adaptive bool
	if v, ok := os.LookupEnv("TOOTGROUP_ADAPTIVE_POLLING"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TOOTGROUP_ADAPTIVE_POLLING has invalid boolean %q: %w", v, err)
		}
		adaptive = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("TOOTGROUP_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	maxNotifications := 100
	if v, ok := os.LookupEnv("TOOTGROUP_MAX_NOTIFICATIONS"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("TOOTGROUP_MAX_NOTIFICATIONS has invalid number %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("TOOTGROUP_MAX_NOTIFICATIONS must be positive, got %d", parsed)
		}
		maxNotifications = parsed
	}

	mediaDir := os.TempDir()
	if v, ok := os.LookupEnv("TOOTGROUP_MEDIA_DIR"); ok && v != "" {
		mediaDir = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("TOOTGROUP_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("TOOTGROUP_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("TOOTGROUP_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		secretKey = key
	}

	return &Config{
		DBPath:           dbPath,
		PollInterval:     pollInterval,
		AdaptivePolling:  adaptive,
		ListenAddr:       listenAddr,
		MaxNotifications: maxNotifications,
		MediaDir:         mediaDir,
		SecretKey:        secretKey,
	}, nil
}

// ParseYesNo converts the yes/no strings used for group policy switches.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseYesNo(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q (want yes or no)", ErrInvalidFlag, value)
	}
}
