// Package config loads the core's tunables from a TOML file, in the style
// of the teacher's `controller/internal/config/config.go` (flags/env with
// defaults) generalized to a file-backed struct the way
// `internal/beads/beads_config.go` structures its config fields. Using
// BurntSushi/toml keeps this aligned with the teacher's own go.mod
// dependency rather than reaching for the standard library's plain-text
// parsing.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// ServiceCapabilities resolves spec.md §9 Open Question 1: whether a
// backend has per-message read granularity (e.g. Slack) versus clearing
// unread state in one shot on channel entry.
type ServiceCapabilities struct {
	PerMessageRead bool `toml:"per_message_read"`
}

// DebounceConfig holds the two debounce intervals named in spec.md §5:
// the pending cursor hint retry and the server mark-read scheduler.
type DebounceConfig struct {
	PendingHintMillis int `toml:"pending_hint_millis"`
	MarkReadMillis    int `toml:"mark_read_millis"`
}

// HydrationConfig controls the on-connect history hydration throttle
// (spec.md §6 "channel_list", §9 Open Question 3).
type HydrationConfig struct {
	SpacingMillis int `toml:"spacing_millis"`
}

// ReconnectConfig controls the transport shim's backoff (spec.md §4.J).
type ReconnectConfig struct {
	BackoffSeconds int `toml:"backoff_seconds"`
}

// Config is the root configuration object.
type Config struct {
	Debounce  DebounceConfig                 `toml:"debounce"`
	Hydration HydrationConfig                `toml:"hydration"`
	Reconnect ReconnectConfig                `toml:"reconnect"`
	Services  map[string]ServiceCapabilities `toml:"services"`
}

// Defaults returns the Config with every reference value from spec.md
// filled in: 300ms pending-hint debounce, 1s mark-read debounce, 200ms
// hydration spacing, 3s reconnect backoff, no configured services.
func Defaults() Config {
	return Config{
		Debounce: DebounceConfig{
			PendingHintMillis: 300,
			MarkReadMillis:    1000,
		},
		Hydration: HydrationConfig{SpacingMillis: 200},
		Reconnect: ReconnectConfig{BackoffSeconds: 3},
		Services:  map[string]ServiceCapabilities{},
	}
}

// Load reads a TOML config file at path, overlaying it onto Defaults().
// Fields absent from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Services == nil {
		cfg.Services = map[string]ServiceCapabilities{}
	}
	return cfg, nil
}
