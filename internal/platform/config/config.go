package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot store backends.
const (
	StoreNone      = "none"
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                  string
	GinMode               string
	DatasetPath           string
	AdditionalDatasetPath string
	CurrentYear           int
	AllowedOrigins        string
	LogLevel              string
	LogFormat             string
	MetricsEnabled        bool
	ModelServiceURL       string
	ModelServiceTimeout   time.Duration
	ModelServiceRetries   int
	SnapshotStore         string
	SQLitePath            string
	DatabaseURL           string
	FirebaseProjectID     string
	FirebaseCredsBase64   string
	FirebaseCredsFile     string
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "release"),
		DatasetPath:           getEnv("DATASET_PATH", "Cleaned_Car_data_master.csv"),
		AdditionalDatasetPath: getEnv("ADDITIONAL_DATASET_PATH", "generated_5000_strict.csv"),
		AllowedOrigins:        strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		ModelServiceURL:       strings.TrimSpace(os.Getenv("MODEL_SERVICE_URL")),
		SnapshotStore:         strings.ToLower(getEnv("SNAPSHOT_STORE", StoreNone)),
		SQLitePath:            getEnv("SQLITE_PATH", "market_snapshots.db"),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		FirebaseProjectID:     strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:     strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
	}

	var err error
	if cfg.CurrentYear, err = parseIntEnv("CURRENT_YEAR", 0); err != nil {
		return Config{}, fmt.Errorf("parse CURRENT_YEAR: %w", err)
	}
	if cfg.MetricsEnabled, err = parseBoolEnv("METRICS_ENABLED", true); err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}
	if cfg.ModelServiceTimeout, err = parseDurationEnv("MODEL_SERVICE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse MODEL_SERVICE_TIMEOUT: %w", err)
	}
	if cfg.ModelServiceRetries, err = parseIntEnv("MODEL_SERVICE_RETRIES", 3); err != nil {
		return Config{}, fmt.Errorf("parse MODEL_SERVICE_RETRIES: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present and the selected snapshot
// store has what it needs.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DatasetPath == "" {
		return errors.New("DATASET_PATH is required")
	}
	if c.CurrentYear < 0 {
		return errors.New("CURRENT_YEAR must not be negative")
	}
	if c.ModelServiceRetries < 1 {
		return errors.New("MODEL_SERVICE_RETRIES must be at least 1")
	}

	switch c.SnapshotStore {
	case StoreNone:
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for SNAPSHOT_STORE=firestore")
		}
		if c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
			return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for SNAPSHOT_STORE=sqlite")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for SNAPSHOT_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_STORE %q", c.SnapshotStore)
	}
	return nil
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}
