package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the client flags from args.
//
// Flags:
//
//	-a remote address in format [host]:[port]
//	-d SQLite database path
//	-c/-config JSON or YAML config file path
//	-log-level zerolog level name
//	-debounce sync debounce window (e.g., "500ms")
//	-request-timeout request timeout (e.g., "10s")
//	-rate-limit outbound requests per second
//	-rate-burst outbound request burst
//	-refresh-interval periodic re-sync interval (e.g., "5m")
//	-decrypt-concurrency parallel field decryptions per cycle
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("pass-sphere", flag.ContinueOnError)

	var (
		remoteAddress      NetAddress
		databaseDSN        string
		configPath         string
		logLevel           string
		debounce           time.Duration
		requestTimeout     time.Duration
		rateLimit          float64
		rateBurst          int
		refreshInterval    time.Duration
		decryptConcurrency int
	)

	fs.Var(&remoteAddress, "a", "Remote net address host:port")
	fs.StringVar(&databaseDSN, "d", "", "SQLite database path")
	fs.StringVar(&configPath, "c", "", "Config file path (JSON or YAML)")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.DurationVar(&debounce, "debounce", 0, "Sync debounce window (e.g., 500ms)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 10s)")
	fs.Float64Var(&rateLimit, "rate-limit", 0, "Outbound requests per second")
	fs.IntVar(&rateBurst, "rate-burst", 0, "Outbound request burst")
	fs.DurationVar(&refreshInterval, "refresh-interval", 0, "Periodic re-sync interval (e.g., 5m)")
	fs.IntVar(&decryptConcurrency, "decrypt-concurrency", 0, "Parallel field decryptions per cycle")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			LogLevel:       logLevel,
			DebounceWindow: debounce,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress.String(),
			RequestTimeout: requestTimeout,
			RateLimit:      rateLimit,
			RateBurst:      rateBurst,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Workers: Workers{
			RefreshInterval:    refreshInterval,
			DecryptConcurrency: decryptConcurrency,
		},
		ConfigFilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string if neither Host nor Port are set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number is a positive integer up to 65535")
	}

	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
