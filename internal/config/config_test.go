package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurantcore/internal/core"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.RestaurantName != "Delicious Bites" || cfg.StorageDriver != core.StorageFile || cfg.DataDir != "." {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.PostgresDSN != "postgres://localhost/restaurant?sslmode=disable" || cfg.S3.Region != "us-east-1" {
		t.Fatalf("unexpected backend defaults %+v", cfg)
	}
	if cfg.AMQPURL != "" || cfg.AMQPExchange != "notifications_fanout" || cfg.StrictLoad {
		t.Fatalf("unexpected notification defaults %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "json" {
		t.Fatalf("unexpected log defaults %+v", cfg)
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"RESTAURANT_NAME":           "Cafe Uno",
		"RESTAURANT_STORAGE_DRIVER": "S3",
		"RESTAURANT_S3_BUCKET":      "menus",
		"RESTAURANT_S3_ENDPOINT":    "http://localhost:9000",
		"RESTAURANT_S3_PATH_STYLE":  "true",
		"RESTAURANT_S3_PREFIX":      "/tenants/uno/",
		"RESTAURANT_STRICT_LOAD":    "1",
		"RESTAURANT_LOG_LEVEL":      "debug",
		"RESTAURANT_LOG_FORMAT":     "TEXT",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != core.StorageS3 || !cfg.S3.PathStyle || !cfg.StrictLoad {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
		t.Fatalf("log overrides not applied %+v", cfg)
	}
	opts := cfg.Storage()
	if opts.RestaurantName != "Cafe Uno" || opts.S3.Bucket != "menus" || opts.S3Prefix != "/tenants/uno/" {
		t.Fatalf("storage options %+v", opts)
	}
}

func TestValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver": {"RESTAURANT_STORAGE_DRIVER": "floppy"},
		"s3 no bucket":   {"RESTAURANT_STORAGE_DRIVER": "s3"},
		"bad bool":       {"RESTAURANT_STRICT_LOAD": "sometimes"},
		"bad level":      {"RESTAURANT_LOG_LEVEL": "loud"},
		"bad log format": {"RESTAURANT_LOG_FORMAT": "xml"},
		"bad path style": {"RESTAURANT_S3_PATH_STYLE": "yes please"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := FromLookup(lookupFrom(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restaurant.env")
	content := "RESTAURANT_NAME=From File\nRESTAURANT_STORAGE_DRIVER=sqlite\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	// godotenv leaves variables that are already set alone.
	t.Setenv("RESTAURANT_STORAGE_DRIVER", "memory")
	t.Cleanup(func() { _ = os.Unsetenv("RESTAURANT_NAME") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RestaurantName != "From File" || cfg.StorageDriver != core.StorageMemory {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	t.Setenv("RESTAURANT_NAME", "Env Only")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RestaurantName != "Env Only" {
		t.Fatalf("name = %q", cfg.RestaurantName)
	}
}

func TestLoadRejectsMalformedEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.env")
	if err := os.WriteFile(path, []byte("RESTAURANT_NAME='unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "broken.env") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}
}
