package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultPort           = 8084
	DefaultMaxMessageSize = 32 << 20 // base64 frames get large
	DefaultPingInterval   = 60 * time.Second
	DefaultSendBufferSize = 256
	DefaultCaptureFPS     = 10
	DefaultCaptureQuality = 80
	DefaultCaptureScale   = 1.0
	DefaultCaptureFormat  = "jpeg"
	DefaultHealthPort     = 8080
	DefaultHealthPath     = "/health"
)

// PortEnvVar overrides the listen port when the config leaves it unset.
const PortEnvVar = "RELAY_PORT"

// Default returns a config with every field at its default value.
func Default() *RelayConfig {
	cfg := &RelayConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *RelayConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = portFromEnv()
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}

	if c.Relay.PingInterval == 0 {
		c.Relay.PingInterval = DefaultPingInterval
	}
	if c.Relay.SendBufferSize == 0 {
		c.Relay.SendBufferSize = DefaultSendBufferSize
	}

	if c.Capture.FPS == 0 {
		c.Capture.FPS = DefaultCaptureFPS
	}
	if c.Capture.Quality == 0 {
		c.Capture.Quality = DefaultCaptureQuality
	}
	if c.Capture.Scale == 0 {
		c.Capture.Scale = DefaultCaptureScale
	}
	if c.Capture.Format == "" {
		c.Capture.Format = DefaultCaptureFormat
	}

	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}

func portFromEnv() int {
	if v := os.Getenv(PortEnvVar); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			return port
		}
	}
	return DefaultPort
}
