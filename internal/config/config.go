// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// StructuredConfig is the top-level configuration container for the
// pass-sphere client. It is populated by merging defaults, an optional config
// file, environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: log level and the sync
	// controller debounce window.
	App App `envPrefix:"APP_"`

	// Adapter holds the remote collaborator address and outbound request
	// limits.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local SQLite settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds background refresh and decryption pool settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// ConfigFilePath is the optional path to a JSON or YAML configuration
	// file. Populated via the CONFIG environment variable or the -c / -config
	// flag.
	ConfigFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// LogLevel is a zerolog level name ("debug", "info", "warn", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// DebounceWindow is the quiet period a sync controller waits after the
	// last trigger before fetching (e.g. "500ms").
	// Env: APP_DEBOUNCE_WINDOW
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`
}

// Adapter holds configuration for the HTTP adapter that reaches the auth,
// key-escrow and record services.
type Adapter struct {
	// HTTPAddress is the remote address in "host:port" format.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound request (e.g. "10s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RateLimit is the sustained number of outbound requests per second.
	// Env: ADAPTER_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// RateBurst is the number of requests allowed above RateLimit in a burst.
	// Env: ADAPTER_RATE_BURST
	RateBurst int `env:"RATE_BURST"`
}

// Storage groups the local persistence settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds the local SQLite settings.
type DB struct {
	// DSN is the SQLite database file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Workers holds configuration for background work.
type Workers struct {
	// RefreshInterval is how often every sync controller is re-triggered.
	// Env: WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`

	// DecryptConcurrency bounds the number of fields decrypted in parallel
	// within one sync cycle.
	// Env: WORKERS_DECRYPT_CONCURRENCY
	DecryptConcurrency int `env:"DECRYPT_CONCURRENCY"`
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel:       "info",
			DebounceWindow: 500 * time.Millisecond,
		},
		Adapter: Adapter{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 10 * time.Second,
			RateLimit:      20,
			RateBurst:      10,
		},
		Storage: Storage{
			DB: DB{DSN: "pass-sphere.db"},
		},
		Workers: Workers{
			RefreshInterval:    5 * time.Minute,
			DecryptConcurrency: 8,
		},
	}
}

func getStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withFile().
		build()
}
