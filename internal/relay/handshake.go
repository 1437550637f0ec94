package relay

import (
	"fmt"
	"time"

	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// roleForClientType maps the advertised clientType to a role. Anything
// not in the table is a consumer.
var roleForClientType = map[string]registry.Role{
	"desktop_capture":       registry.RoleProducer,
	"desktop":               registry.RoleProducer,
	"multi_monitor_capture": registry.RoleProducerMultiMonitor,
	"dual_screen_capture":   registry.RoleProducerDualScreen,
	"desktop_spawner":       registry.RoleSpawner,
	"spawner":               registry.RoleSpawner,
}

func classifyClientType(clientType string) registry.Role {
	if role, ok := roleForClientType[clientType]; ok {
		return role
	}
	return registry.RoleConsumer
}

func connectedTypeForRole(role registry.Role) protocol.Type {
	switch role {
	case registry.RoleProducerMultiMonitor:
		return protocol.TypeMultiMonitorDesktopConnected
	case registry.RoleProducerDualScreen:
		return protocol.TypeDualScreenConnected
	default:
		return protocol.TypeDesktopConnected
	}
}

func disconnectedTypeForRole(role registry.Role) protocol.Type {
	if role == registry.RoleProducerDualScreen {
		return protocol.TypeDualScreenDisconnected
	}
	return protocol.TypeDesktopDisconnected
}

// handleHandshake classifies a fresh connection, registers it and
// announces producer-family roles to consumers.
func (r *Relay) handleHandshake(c *registry.Conn, env protocol.Envelope) {
	if c.Role() != registry.RoleUnclassified {
		r.sendError(c, "Handshake already completed", string(c.Role()))
		return
	}

	var hs protocol.Handshake
	if err := env.DecodeAs(&hs); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	role := classifyClientType(hs.ClientInfo.ClientType)

	id := hs.ClientInfo.ClientID
	if id == "" {
		id = fmt.Sprintf("%s_%d", role, time.Now().UnixMilli())
	}

	ident := registry.Identity{
		ID:           id,
		Role:         role,
		ProducerID:   hs.ClientInfo.DesktopID,
		ScreenID:     hs.ClientInfo.ScreenID,
		Capabilities: hs.ClientInfo.Capabilities,
		MonitorCount: hs.ClientInfo.MonitorCount,
		Monitors:     hs.ClientInfo.MonitorInfo,
	}
	if err := c.Classify(ident); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	evicted, err := r.registry.Register(c, role)
	if err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}
	if evicted != nil {
		r.logger.Info("replacing connection with duplicate id",
			"conn_id", id,
			"role", role,
		)
		evicted.Close()
	}

	r.startHeartbeat(c)

	r.logger.Info("connection classified",
		"conn_id", id,
		"role", role,
		"client_type", hs.ClientInfo.ClientType,
	)

	// The socket can close concurrently with classification; only ack
	// while it is still open.
	if c.IsOpen() {
		ack := protocol.HandshakeAck{
			Type:         protocol.TypeHandshakeAck,
			ClientInfo:   hs.ClientInfo,
			ServerStatus: "ready",
		}
		ack.ClientInfo.ClientID = id
		if err := c.Send(ack); err != nil {
			r.logger.Warn("handshake_ack send failed", "conn_id", id, "error", err)
		}
	}

	if role.Producer() {
		r.registry.Multicast(registry.RoleConsumer, protocol.ProducerConnected{
			Type:            connectedTypeForRole(role),
			DesktopClientID: id,
			DesktopID:       hs.ClientInfo.DesktopID,
			ScreenID:        hs.ClientInfo.ScreenID,
			Capabilities:    hs.ClientInfo.Capabilities,
			MonitorCount:    hs.ClientInfo.MonitorCount,
			MonitorInfo:     hs.ClientInfo.MonitorInfo,
		})
	}
}
