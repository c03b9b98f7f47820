// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for nerva.
//
// # Key Types
//
//   - Config: immutable runtime configuration (endpoint, key, model, storage)
//   - MissingVariableError: a required environment variable is absent
//   - ValidateErrors: invalid tuning values from the config file
//
// # Required Environment
//
//   - API_URL: full URL of the chat completion endpoint
//   - API_KEY: bearer token sent with every request
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(1)
//	}
//	client := completion.NewClient(cfg)
package config
