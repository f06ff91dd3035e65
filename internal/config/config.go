// Package config reads restaurantcore settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"restaurantcore/internal/blob"
	"restaurantcore/internal/core"
)

// Config holds every setting the command needs.
type Config struct {
	RestaurantName string
	StorageDriver  core.StorageDriver
	DataDir        string
	SQLitePath     string
	PostgresDSN    string
	S3             blob.S3Config
	S3Prefix       string
	AMQPURL        string
	AMQPExchange   string
	StrictLoad     bool
	LogLevel       slog.Level
	LogFormat      string
}

// Load reads the given .env files (".env" when none are named) and then the
// process environment. Missing .env files are ignored; variables already set
// in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applying defaults and validation.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		RestaurantName: get("RESTAURANT_NAME", "Delicious Bites"),
		StorageDriver:  core.StorageDriver(strings.ToLower(get("RESTAURANT_STORAGE_DRIVER", string(core.StorageFile)))),
		DataDir:        get("RESTAURANT_DATA_DIR", "."),
		SQLitePath:     get("RESTAURANT_SQLITE_PATH", ""),
		PostgresDSN:    get("RESTAURANT_POSTGRES_DSN", "postgres://localhost/restaurant?sslmode=disable"),
		S3: blob.S3Config{
			Bucket:          get("RESTAURANT_S3_BUCKET", ""),
			Region:          get("RESTAURANT_S3_REGION", "us-east-1"),
			Endpoint:        get("RESTAURANT_S3_ENDPOINT", ""),
			AccessKeyID:     get("RESTAURANT_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: get("RESTAURANT_S3_SECRET_ACCESS_KEY", ""),
			SessionToken:    get("RESTAURANT_S3_SESSION_TOKEN", ""),
		},
		S3Prefix:     get("RESTAURANT_S3_PREFIX", ""),
		AMQPURL:      get("RESTAURANT_AMQP_URL", ""),
		AMQPExchange: get("RESTAURANT_AMQP_EXCHANGE", "notifications_fanout"),
		LogFormat:    strings.ToLower(get("RESTAURANT_LOG_FORMAT", "json")),
	}

	var err error
	if cfg.S3.PathStyle, err = parseBool("RESTAURANT_S3_PATH_STYLE", get("RESTAURANT_S3_PATH_STYLE", "false")); err != nil {
		return Config{}, err
	}
	if cfg.StrictLoad, err = parseBool("RESTAURANT_STRICT_LOAD", get("RESTAURANT_STRICT_LOAD", "false")); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("RESTAURANT_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("RESTAURANT_LOG_LEVEL: %w", err)
	}
	return cfg, cfg.Validate()
}

func parseBool(key, raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return v, nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if !slices.Contains(core.StorageDrivers, c.StorageDriver) {
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.StorageDriver == core.StorageS3 && c.S3.Bucket == "" {
		return errors.New("RESTAURANT_S3_BUCKET is required for the s3 driver")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Storage returns the backend options for core.OpenBackend.
func (c Config) Storage() core.StorageOptions {
	return core.StorageOptions{
		Driver:         c.StorageDriver,
		RestaurantName: c.RestaurantName,
		DataDir:        c.DataDir,
		SQLitePath:     c.SQLitePath,
		PostgresDSN:    c.PostgresDSN,
		S3:             c.S3,
		S3Prefix:       c.S3Prefix,
	}
}
