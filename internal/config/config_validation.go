// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 ||
		cfg.Adapter.RateLimit <= 0 || cfg.Adapter.RateBurst <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.RefreshInterval <= 0 || cfg.Workers.DecryptConcurrency <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.DebounceWindow <= 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}
