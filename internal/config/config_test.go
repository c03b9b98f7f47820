// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	trequire "github.com/stretchr/testify/require"
)

func envLookup(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestResolve_RequiresEndpointAndKey(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		missing string
	}{
		{"nothing set", map[string]string{}, EnvAPIURL},
		{"key only", map[string]string{EnvAPIKey: "k"}, EnvAPIURL},
		{"url only", map[string]string{EnvAPIURL: "http://x"}, EnvAPIKey},
		{"empty key", map[string]string{EnvAPIURL: "http://x", EnvAPIKey: ""}, EnvAPIKey},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolve(Default(), envLookup(tc.vars))
			trequire.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingVariable))

			var missing *MissingVariableError
			trequire.True(t, errors.As(err, &missing))
			assert.Equal(t, tc.missing, missing.Name)
			assert.Contains(t, err.Error(), tc.missing)
		})
	}
}

func TestDefaultSystemPrompt_FullPersona(t *testing.T) {
	cfg := Default()
	for _, part := range []string{
		"plain text without any Markdown",
		"You are NERVA (Networked Embedded Responsive Virtual Assistant)",
		"You are created by Azka.",
		"smart home system",
		"strict security protocols",
		"adapting to their preferences.",
	} {
		assert.Contains(t, cfg.SystemPrompt, part)
	}
}

func TestResolve_AppliesEnvironment(t *testing.T) {
	cfg, err := resolve(Default(), envLookup(map[string]string{
		EnvAPIURL:      "https://api.example.com/v1/chat/completions",
		EnvAPIKey:      "secret",
		EnvDatabaseURL: "postgres://localhost/nerva",
		EnvModel:       "other-model",
	}))
	trequire.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1/chat/completions", cfg.Endpoint)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "postgres://localhost/nerva", cfg.DatabaseURL)
	assert.Equal(t, "other-model", cfg.Model)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
}

func TestResolve_DoesNotValidateURLShape(t *testing.T) {
	cfg, err := resolve(Default(), envLookup(map[string]string{
		EnvAPIURL: "not a url",
		EnvAPIKey: "k",
	}))
	trequire.NoError(t, err)
	assert.Equal(t, "not a url", cfg.Endpoint)
}

func TestLoadTOML_AppliesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
model = "custom/model"
temperature = 0.3
system_prompt = "be brief"
timeout_secs = 45
persist = false
log_level = "debug"
`
	trequire.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := Default()
	trequire.NoError(t, LoadTOML(&cfg, path))
	cfg, err := resolve(cfg, envLookup(map[string]string{
		EnvAPIURL: "http://localhost:9999",
		EnvAPIKey: "k",
	}))
	trequire.NoError(t, err)

	assert.Equal(t, "custom/model", cfg.Model)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, "be brief", cfg.SystemPrompt)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.False(t, cfg.Persist)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadTOML_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	trequire.NoError(t, os.WriteFile(path, []byte("model = ["), 0600))

	cfg := Default()
	assert.Error(t, LoadTOML(&cfg, path))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Temperature = 3
	cfg.TimeoutSecs = -1
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	trequire.Error(t, err)

	var errs ValidateErrors
	trequire.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 3)
	assert.Contains(t, err.Error(), "temperature")
	assert.Contains(t, err.Error(), "log_level")
}

func TestString_RedactsKey(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "super-secret-key"
	s := cfg.String()

	assert.NotContains(t, s, "super-secret-key")
	assert.Contains(t, s, cfg.KeyFingerprint())
	assert.Len(t, cfg.KeyFingerprint(), 8)
	assert.True(t, strings.Contains(s, "REDACTED"))
}
