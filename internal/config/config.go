package config

import (
	"fmt"
	"os"
	"path/filepath"

	"dupetrack/internal/policy"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file settings
const (
	EnvAuditFile    = "DUPETRACK_AUDIT_FILE"
	EnvLogLevel     = "DUPETRACK_LOG_LEVEL"
	EnvScanErrors   = "DUPETRACK_SCAN_ERRORS"
	EnvDeleteErrors = "DUPETRACK_DELETE_ERRORS"
)

// Config represents the application configuration
type Config struct {
	Scan    ScanConfig    `toml:"scan"`
	Resolve ResolveConfig `toml:"resolve"`
	Logging LoggingConfig `toml:"logging"`
}

// ScanConfig controls which files are considered and how walk errors are handled
type ScanConfig struct {
	Extensions  []string `toml:"extensions"`
	ErrorPolicy string   `toml:"error_policy"`
}

// ResolveConfig controls the interactive deletion phase
type ResolveConfig struct {
	AuditFile   string `toml:"audit_file"`
	ErrorPolicy string `toml:"error_policy"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// DefaultConfig returns a configuration matching the tool's historic behavior
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:  []string{".mp3"},
			ErrorPolicy: string(policy.Abort),
		},
		Resolve: ResolveConfig{
			AuditFile:   "deleted.txt",
			ErrorPolicy: string(policy.Abort),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// LoadConfig loads configuration from a TOML file. A missing file is
// created with defaults.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# dupetrack configuration
# error_policy is one of: abort, skip, collect

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile when it exists and applies DUPETRACK_* overrides
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if v := os.Getenv(EnvAuditFile); v != "" {
		c.Resolve.AuditFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvScanErrors); v != "" {
		c.Scan.ErrorPolicy = v
	}
	if v := os.Getenv(EnvDeleteErrors); v != "" {
		c.Resolve.ErrorPolicy = v
	}

	return c.Validate()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("at least one audio extension must be specified")
	}
	for _, ext := range c.Scan.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("invalid extension: %q (must start with a dot)", ext)
		}
	}
	if _, err := policy.Parse(c.Scan.ErrorPolicy); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if c.Resolve.AuditFile == "" {
		return fmt.Errorf("audit file path cannot be empty")
	}
	if _, err := policy.Parse(c.Resolve.ErrorPolicy); err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// ScanPolicy returns the parsed scan error policy
func (c *Config) ScanPolicy() policy.Policy {
	p, _ := policy.Parse(c.Scan.ErrorPolicy)
	return p
}

// DeletePolicy returns the parsed delete error policy
func (c *Config) DeletePolicy() policy.Policy {
	p, _ := policy.Parse(c.Resolve.ErrorPolicy)
	return p
}

// IsExtensionSupported checks if an extension is scanned. The match is
// case-sensitive.
func (c *Config) IsExtensionSupported(ext string) bool {
	for _, supported := range c.Scan.Extensions {
		if supported == ext {
			return true
		}
	}
	return false
}
