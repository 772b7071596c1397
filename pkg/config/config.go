// Package config carries the server's runtime configuration.
package config

import (
	"os"
	"strconv"
)

// DefaultTimeControlMinutes is used when a joinGame request carries no
// time control, mirroring the client's default.
const DefaultTimeControlMinutes = 10

// Config holds everything main wires together. Port and Debug come from
// flags; the rest from the environment (.env supported).
type Config struct {
	Debug bool
	Port  string

	// AllowedOrigin restricts websocket upgrades; empty allows any.
	AllowedOrigin string

	// DefaultTimeControlMinutes applies when a join request omits its
	// time control.
	DefaultTimeControlMinutes int
}

// LoadEnv fills the environment-backed fields.
func (c *Config) LoadEnv() {
	c.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")

	c.DefaultTimeControlMinutes = DefaultTimeControlMinutes
	if v := os.Getenv("DEFAULT_TIME_CONTROL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.DefaultTimeControlMinutes = minutes
		}
	}
}
