package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dupetrack/internal/policy"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.ScanPolicy() != policy.Abort || cfg.DeletePolicy() != policy.Abort {
		t.Error("expected abort policies by default")
	}
	if !cfg.IsExtensionSupported(".mp3") || cfg.IsExtensionSupported(".MP3") {
		t.Error("expected case-sensitive .mp3 match")
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dupetrack.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Resolve.AuditFile != "deleted.txt" {
		t.Errorf("expected default audit file, got %s", cfg.Resolve.AuditFile)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}

	// Round trip the written file
	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig on written file: %v", err)
	}
	if strings.Join(again.Scan.Extensions, ",") != ".mp3" {
		t.Errorf("unexpected extensions after reload: %v", again.Scan.Extensions)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dupetrack.toml")
	content := `
[scan]
extensions = [".mp3", ".flac"]
error_policy = "collect"

[resolve]
audit_file = "/var/log/dupes.txt"
error_policy = "skip"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ScanPolicy() != policy.Collect {
		t.Errorf("expected collect scan policy, got %s", cfg.ScanPolicy())
	}
	if cfg.DeletePolicy() != policy.Skip {
		t.Errorf("expected skip delete policy, got %s", cfg.DeletePolicy())
	}
	if !cfg.IsExtensionSupported(".flac") {
		t.Error("expected .flac to be supported")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected unspecified logging to keep defaults, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no extensions", func(c *Config) { c.Scan.Extensions = nil }},
		{"extension without dot", func(c *Config) { c.Scan.Extensions = []string{"mp3"} }},
		{"bad scan policy", func(c *Config) { c.Scan.ErrorPolicy = "retry" }},
		{"bad delete policy", func(c *Config) { c.Resolve.ErrorPolicy = "later" }},
		{"empty audit file", func(c *Config) { c.Resolve.AuditFile = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Scan.ErrorPolicy = "retry"
	if err := cfg.Validate(); !errors.Is(err, policy.ErrInvalidPolicy) {
		t.Errorf("expected wrapped ErrInvalidPolicy, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("DUPETRACK_AUDIT_FILE=from-dotenv.txt\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvAuditFile, "")
	os.Unsetenv(EnvAuditFile)
	t.Setenv(EnvDeleteErrors, "collect")
	t.Setenv(EnvLogLevel, "debug")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(envFile); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Resolve.AuditFile != "from-dotenv.txt" {
		t.Errorf("expected audit file from .env, got %s", cfg.Resolve.AuditFile)
	}
	if cfg.DeletePolicy() != policy.Collect {
		t.Errorf("expected collect delete policy, got %s", cfg.DeletePolicy())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.Logging.Level)
	}

	t.Setenv(EnvScanErrors, "sometimes")
	if err := DefaultConfig().ApplyEnv(""); err == nil {
		t.Error("expected invalid env policy to fail validation")
	}
}
