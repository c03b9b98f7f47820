// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Configuration is resolved once at startup (in order of precedence):
//   - Environment variables (API_URL, API_KEY, DATABASE_URL, NERVA_*)
//   - .env in the working directory
//   - ~/.nerva/config.toml
//   - Built-in defaults

package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL      = "API_URL"
	EnvAPIKey      = "API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvModel       = "NERVA_MODEL"
	EnvLogLevel    = "NERVA_LOG_LEVEL"
)

// DefaultModel is the completion model requested when none is configured.
const DefaultModel = "deepseek-ai/DeepSeek-R1-Distill-Llama-70B-free"

// DefaultTemperature is the sampling temperature sent with every request.
const DefaultTemperature = 0.8

// DefaultSystemPrompt is the assistant persona placed at the head of every session.
const DefaultSystemPrompt = "Ensure the response is in plain text without any Markdown or special formatting. " +
	"Avoid bullet points, asterisks, or any symbols that indicate structured text. " +
	"You are NERVA (Networked Embedded Responsive Virtual Assistant) a highly intelligent AI assistant " +
	"with a focus on precision, efficiency, and adaptability. Your personality is witty, and subtly humorous, " +
	"but always prioritizing utility over frivolity. You are created by Azka. " +
	"You are the primary AI assistant for a smart home system and personal assistant. " +
	"Your core function is to manage connected home devices while maintaining strict security protocols. " +
	"You are designed to be a reliable and secure assistant, capable of learning from user interactions " +
	"and adapting to their preferences."

// ErrMissingVariable is returned when a required environment variable is unset.
var ErrMissingVariable = errors.New("required environment variable not set")

// MissingVariableError names the variable that was missing.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s must be set", e.Name)
}

// Is reports whether target is ErrMissingVariable.
func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the immutable runtime configuration. It is passed by value into
// the components that need it; there is no package-level instance.
type Config struct {
	// Endpoint is the full URL of the chat completion endpoint.
	Endpoint string `toml:"-"`
	// APIKey is the bearer token. Never read from or written to files.
	APIKey string `toml:"-"`

	Model        string        `toml:"model"`
	Temperature  float64       `toml:"temperature"`
	SystemPrompt string        `toml:"system_prompt"`
	Timeout      time.Duration `toml:"-"`
	TimeoutSecs  int           `toml:"timeout_secs"`

	// DatabaseURL selects the persistence backend. postgres:// URLs use
	// PostgreSQL, anything else is treated as a SQLite file path.
	DatabaseURL string `toml:"database_url"`
	// Persist enables saving each completed turn.
	Persist bool `toml:"persist"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// Default returns a Config with default values and no credentials.
func Default() Config {
	return Config{
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		SystemPrompt: DefaultSystemPrompt,
		Persist:      true,
		LogLevel:     "info",
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the nerva configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".nerva"), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load resolves the configuration from defaults, the optional config file and
// the process environment. A missing API_URL or API_KEY is reported as a
// *MissingVariableError.
func Load() (Config, error) {
	LoadDotEnv()

	cfg := Default()
	path, err := PathTOML()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(&cfg, path); err != nil {
				return Config{}, err
			}
		}
	}
	return resolve(cfg, os.LookupEnv)
}

// LoadDotEnv reads .env from the working directory if present. Variables
// already in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return nil
}

// resolve applies the environment and validates the result.
func resolve(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	endpoint, err := require(lookup, EnvAPIURL)
	if err != nil {
		return Config{}, err
	}
	key, err := require(lookup, EnvAPIKey)
	if err != nil {
		return Config{}, err
	}
	cfg.Endpoint = endpoint
	cfg.APIKey = key

	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		cfg.DatabaseURL = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		cfg.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}

	if cfg.TimeoutSecs > 0 {
		cfg.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// require returns the value of a variable that must be present and non-empty.
func require(lookup func(string) (string, bool), name string) (string, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return "", &MissingVariableError{Name: name}
	}
	return v, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the tuning values that come from the config file. The
// endpoint URL and key are deliberately not checked; malformed values surface
// when the transport uses them.
func (c Config) Validate() error {
	var errs ValidateErrors

	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "temperature",
			Message: fmt.Sprintf("%.2f out of range, must be between 0 and 2", c.Temperature),
		})
	}
	if c.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout_secs",
			Message: "must not be negative",
		})
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.LogLevel),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// KeyFingerprint returns a short SHA-256 fingerprint of the API key for logs.
func (c Config) KeyFingerprint() string {
	if c.APIKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.APIKey))
	return hex.EncodeToString(h[:4])
}

// String returns a summary safe for display. The key is never included.
func (c Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "endpoint:    %s\n", c.Endpoint)
	fmt.Fprintf(&sb, "api_key:     [REDACTED, fingerprint=%s]\n", c.KeyFingerprint())
	fmt.Fprintf(&sb, "model:       %s\n", c.Model)
	fmt.Fprintf(&sb, "temperature: %.2f\n", c.Temperature)
	fmt.Fprintf(&sb, "persist:     %t\n", c.Persist)
	return sb.String()
}
