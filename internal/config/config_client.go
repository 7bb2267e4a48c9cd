package config

import (
	"fmt"
	"os"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// LogLevel is applied to the zerolog global level at startup.
	LogLevel string
	// DebounceWindow is the sync controller quiet period.
	DebounceWindow time.Duration
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote endpoint address.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// RateLimit is the sustained outbound request rate per second.
	RateLimit float64
	// RateBurst is the outbound request burst size.
	RateBurst int
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// RefreshInterval defines how often the sync controllers are re-triggered.
	RefreshInterval time.Duration
	// DecryptConcurrency bounds parallel field decryption per cycle.
	DecryptConcurrency int
}

// ClientConfig is the client configuration view assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
}

// GetClientConfig builds and validates the client config from defaults, the
// optional config file, the environment and os.Args.
func GetClientConfig() (*ClientConfig, error) {
	return getClientConfig(os.Args[1:])
}

func getClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := getStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			LogLevel:       cfg.App.LogLevel,
			DebounceWindow: cfg.App.DebounceWindow,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			RateLimit:      cfg.Adapter.RateLimit,
			RateBurst:      cfg.Adapter.RateBurst,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			RefreshInterval:    cfg.Workers.RefreshInterval,
			DecryptConcurrency: cfg.Workers.DecryptConcurrency,
		},
	}

	return clientCfg, clientCfg.validate()
}
