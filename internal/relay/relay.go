package relay

import (
	"log/slog"
	"time"

	"github.com/rickgao/screen-relay/internal/instance"
	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// Config holds relay behavior settings.
type Config struct {
	PingInterval    time.Duration
	CaptureDefaults protocol.CaptureConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval: 60 * time.Second,
		CaptureDefaults: protocol.CaptureConfig{
			FPS:     10,
			Quality: 80,
			Scale:   1.0,
			Format:  "jpeg",
		},
	}
}

// Relay routes messages between connections. One Relay serves all
// connections of a server.
type Relay struct {
	cfg       Config
	logger    *slog.Logger
	registry  *registry.Registry
	instances *instance.Manager
}

// New creates a Relay on top of a registry and instance manager.
func New(cfg Config, reg *registry.Registry, instances *instance.Manager, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultConfig().PingInterval
	}

	return &Relay{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		instances: instances,
	}
}

// HandleOpen runs once when a socket is accepted, before any message.
func (r *Relay) HandleOpen(c *registry.Conn) {
	err := c.Send(protocol.ConnectionEstablished{
		Type:       protocol.TypeConnectionEstablished,
		Message:    "connected to relay",
		ServerTime: time.Now().UnixMilli(),
	})
	if err != nil {
		r.logger.Warn("failed to send connection_established", "error", err)
	}
}

// HandleMessage dispatches one inbound message. It is called
// sequentially per connection by the transport read loop.
func (r *Relay) HandleMessage(c *registry.Conn, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	// Before classification only the handshake is accepted.
	if c.Role() == registry.RoleUnclassified && env.Type != protocol.TypeHandshake {
		r.sendError(c, "Handshake required", string(env.Type))
		return
	}

	switch env.Type {
	case protocol.TypeHandshake:
		r.handleHandshake(c, env)
	case protocol.TypePing:
		r.handlePing(c)
	case protocol.TypePong:
		// Passive liveness reply; no missed-pong eviction policy.
	case protocol.TypeFrameData, protocol.TypeDualScreenFrame:
		r.handleFrame(c, env)
	case protocol.TypeStartDesktopStream:
		r.handleStreamCommand(c, env, true)
	case protocol.TypeStopDesktopStream:
		r.handleStreamCommand(c, env, false)
	case protocol.TypeRequestScreenshot:
		r.handleScreenshotRequest(c, env)
	case protocol.TypeStreamStatus, protocol.TypeDesktopStreamStatus:
		r.handleStreamStatus(c, env)
	case protocol.TypeGetDesktopClients:
		r.handleGetDesktopClients(c)
	case protocol.TypeCreateDesktopInstance:
		r.handleCreateInstance(c, env)
	case protocol.TypeRemoveDesktopInstance:
		r.handleRemoveInstance(c, env)
	case protocol.TypeListDesktopInstances:
		r.handleListInstances(c)
	case protocol.TypeDesktopInstanceStatus:
		r.handleInstanceStatus(c, env)
	case protocol.TypeActionCommand:
		r.handleSimulated(c, env, protocol.TypeActionResult)
	case protocol.TypeFileOperation:
		r.handleSimulated(c, env, protocol.TypeFileOperationResult)
	case protocol.TypeWorkflowDataRequest:
		r.handleSimulated(c, env, protocol.TypeWorkflowDataResponse)
	case protocol.TypeClientDisconnect:
		r.handleClientDisconnect(c, env)
	default:
		r.sendError(c, "Unknown message type: "+string(env.Type), "")
	}
}

// HandleClose tears down a connection on transport close or error:
// the heartbeat is cancelled, the registry entry removed, and consumer
// connections are told when a producer goes away.
func (r *Relay) HandleClose(c *registry.Conn, cause error) {
	ident := c.Identity()

	removed := r.registry.Unregister(c)
	c.Close()

	if ident.Role == registry.RoleUnclassified {
		return
	}

	r.logger.Info("connection closed",
		"conn_id", ident.ID,
		"role", ident.Role,
		"cause", cause,
	)

	// An evicted connection's id is owned by its replacement by now;
	// announcing its close would tell consumers a live producer is gone.
	if removed && ident.Role.Producer() {
		r.registry.Multicast(registry.RoleConsumer, protocol.ProducerDisconnected{
			Type:            disconnectedTypeForRole(ident.Role),
			DesktopClientID: ident.ID,
			DesktopID:       ident.ProducerID,
		})
	}
}

func (r *Relay) handlePing(c *registry.Conn) {
	if err := c.Send(protocol.Pong{Type: protocol.TypePong, Timestamp: time.Now().UnixMilli()}); err != nil {
		r.logger.Debug("pong send failed", "conn_id", c.ID(), "error", err)
	}
}

func (r *Relay) handleClientDisconnect(c *registry.Conn, env protocol.Envelope) {
	var msg protocol.ClientDisconnect
	env.DecodeAs(&msg) // advisory; a bad payload still disconnects

	r.logger.Info("client requested disconnect",
		"conn_id", c.ID(),
		"reason", msg.Reason,
	)
	c.Close()
}

// sendError reports a non-fatal protocol error back to the sender.
// The connection stays open.
func (r *Relay) sendError(c *registry.Conn, msg, details string) {
	err := c.Send(protocol.Error{
		Type:    protocol.TypeError,
		Error:   msg,
		Details: details,
	})
	if err != nil {
		r.logger.Debug("error reply send failed", "conn_id", c.ID(), "error", err)
	}
}
