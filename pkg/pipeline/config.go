package pipeline

import "time"

// Config is the runtime validation configuration.
// It is replaced wholesale on every configuration change.
type Config struct {
	// CheckOnChange makes content changes trigger validation, not only saves
	CheckOnChange bool `json:"checkOnChange"`
	// PreciseLocations places violations at their source position instead of
	// the placeholder position
	PreciseLocations bool `json:"preciseLocations"`
	// Timeout bounds one schema stage run; zero means no timeout
	Timeout time.Duration `json:"-"`
}

// DefaultConfig returns the configuration in effect before any change event
func DefaultConfig() Config {
	return Config{}
}
