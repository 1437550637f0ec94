package config

import (
	"errors"
	"fmt"
)

// Validate checks that all values are in range.
func (c *RelayConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxMessageSize < 1 {
		return errors.New("server.max_message_size must be >= 1")
	}

	if c.Relay.PingInterval <= 0 {
		return errors.New("relay.ping_interval must be > 0")
	}
	if c.Relay.SendBufferSize < 1 {
		return errors.New("relay.send_buffer_size must be >= 1")
	}

	if c.Capture.FPS < 1 {
		return errors.New("capture.fps must be >= 1")
	}
	if c.Capture.Quality < 1 || c.Capture.Quality > 100 {
		return fmt.Errorf("capture.quality must be between 1 and 100, got %d", c.Capture.Quality)
	}
	if c.Capture.Scale <= 0 {
		return errors.New("capture.scale must be > 0")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}
	if c.Health.Port == c.Server.Port {
		return fmt.Errorf("health.port (%d) conflicts with server.port", c.Health.Port)
	}

	return nil
}
