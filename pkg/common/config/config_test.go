package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PATIENT_API_KEY", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")
	t.Setenv("FETCH_DEFAULT_LIMIT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryBaseDelay != 300*time.Millisecond || cfg.RetryMaxDelay != 4*time.Second {
		t.Fatalf("unexpected retry delays: %v / %v", cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	}
	if cfg.FetchDefaultLimit != 5 || cfg.FetchDefaultMaxPages != 10 {
		t.Fatalf("unexpected fetch defaults: %d / %d", cfg.FetchDefaultLimit, cfg.FetchDefaultMaxPages)
	}
	if cfg.PatientAPIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.PatientAPIKey)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riskwatch.yaml")
	content := []byte("PATIENT_API_KEY: from-file\nRETRY_MAX_ATTEMPTS: 3\nkafka_brokers:\n  - a:9092\n  - b:9092\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PATIENT_API_KEY", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PatientAPIKey != "from-file" {
		t.Fatalf("expected key from file, got %q", cfg.PatientAPIKey)
	}
	if cfg.RetryMaxAttempts != 7 {
		t.Fatalf("expected env to win, got %d", cfg.RetryMaxAttempts)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
