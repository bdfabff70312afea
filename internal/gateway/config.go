package gateway

import (
	"net"
	"strconv"
	"time"
)

// Config holds HTTP gateway configuration.
type Config struct {
	Bind            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// bindAddr returns the all-interfaces listen address for port.
func bindAddr(port int) string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(port))
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}
