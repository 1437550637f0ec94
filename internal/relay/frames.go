package relay

import (
	"time"

	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// handleFrame enriches a producer frame with routing metadata and fans
// it out to all consumers. Best-effort, at-most-once per recipient:
// backpressured consumers drop frames.
func (r *Relay) handleFrame(c *registry.Conn, env protocol.Envelope) {
	if !c.Role().Producer() {
		r.logger.Warn("frame from non-producer dropped",
			"conn_id", c.ID(),
			"role", c.Role(),
			"msg_type", env.Type,
		)
		return
	}

	var frame protocol.FrameData
	if err := env.DecodeAs(&frame); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	ident := c.Identity()

	screenID := frame.ScreenID
	if screenID == "" {
		screenID = ident.ScreenID
	}

	frame.ServerTimestamp = time.Now().UnixMilli()
	frame.RoutingInfo = &protocol.RoutingInfo{
		SourceClientID: ident.ID,
		ProducerID:     ident.ProducerID,
		ScreenID:       screenID,
		MonitorID:      frame.MonitorID,
		MultiMonitor:   frame.Config != nil && frame.Config.Mode == protocol.ModeMultiMonitor,
	}

	if _, err := r.registry.Multicast(registry.RoleConsumer, frame); err != nil {
		r.logger.Warn("frame fan-out failed", "conn_id", ident.ID, "error", err)
	}
}
