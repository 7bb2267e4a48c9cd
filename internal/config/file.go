package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig mirrors [StructuredConfig] for JSON and YAML config
// files. Durations are written as strings like "500ms" or "5m".
type StructuredFileConfig struct {
	App struct {
		LogLevel       string   `json:"log_level" yaml:"log_level"`
		DebounceWindow Duration `json:"debounce_window" yaml:"debounce_window"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"`
		RateBurst      int      `json:"rate_burst" yaml:"rate_burst"`
	} `json:"adapter,omitempty" yaml:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn"`
		} `json:"db,omitempty" yaml:"db,omitempty"`
	} `json:"storage,omitempty" yaml:"storage,omitempty"`

	Workers struct {
		RefreshInterval    Duration `json:"refresh_interval" yaml:"refresh_interval"`
		DecryptConcurrency int      `json:"decrypt_concurrency" yaml:"decrypt_concurrency"`
	} `json:"workers,omitempty" yaml:"workers,omitempty"`
}

func parseFile(path string) (*StructuredConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}
	defer f.Close()

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.NewDecoder(f).Decode(&fileCfg)
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&fileCfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	return fileCfg.toStructured(), nil
}

func (c StructuredFileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel:       c.App.LogLevel,
			DebounceWindow: time.Duration(c.App.DebounceWindow),
		},
		Adapter: Adapter{
			HTTPAddress:    c.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(c.Adapter.RequestTimeout),
			RateLimit:      c.Adapter.RateLimit,
			RateBurst:      c.Adapter.RateBurst,
		},
		Storage: Storage{
			DB: DB{DSN: c.Storage.DB.DSN},
		},
		Workers: Workers{
			RefreshInterval:    time.Duration(c.Workers.RefreshInterval),
			DecryptConcurrency: c.Workers.DecryptConcurrency,
		},
	}
}

// Duration is a wrapper around time.Duration that unmarshals from strings
// like "1h" or "30s" in both JSON and YAML, and from integer nanoseconds in
// JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}
