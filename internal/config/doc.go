// Package config provides configuration loading, merging, and validation
// facilities for the pass-sphere client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Config file (JSON or YAML, chosen by extension)
//  3. Environment variables
//  4. Command-line flags
//
// The main entry point is [GetClientConfig].
package config
