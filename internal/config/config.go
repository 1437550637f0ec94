package config

import "time"

// RelayConfig is the root configuration for a relay instance.
type RelayConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Relay   RelaySettings `yaml:"relay"`
	Capture CaptureConfig `yaml:"capture"`
	Health  HealthConfig  `yaml:"health"`
}

// ServerConfig holds the WebSocket listener settings.
type ServerConfig struct {
	Host           string `yaml:"host"` // empty = all interfaces
	Port           int    `yaml:"port"`
	MaxMessageSize int64  `yaml:"max_message_size"` // bytes, per inbound message
}

// RelaySettings holds relay behavior settings.
type RelaySettings struct {
	PingInterval   time.Duration `yaml:"ping_interval"`
	SendBufferSize int           `yaml:"send_buffer_size"` // per-connection outbound queue
}

// CaptureConfig holds the defaults applied to capture commands that
// omit fields.
type CaptureConfig struct {
	FPS     int     `yaml:"fps"`
	Quality int     `yaml:"quality"`
	Scale   float64 `yaml:"scale"`
	Format  string  `yaml:"format"`
}

// HealthConfig holds the health/stats HTTP endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
