// Package utils provides general-purpose helpers used across the client:
// the resty client factory, trace ids and the clock abstraction used by
// timers.
package utils
