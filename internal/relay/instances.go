package relay

import (
	"github.com/rickgao/screen-relay/internal/instance"
	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// handleCreateInstance records a new desktop instance (idempotent on
// retry) and forwards the normalized creation command to every spawner.
func (r *Relay) handleCreateInstance(c *registry.Conn, env protocol.Envelope) {
	var req protocol.CreateDesktopInstance
	if err := env.DecodeAs(&req); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	id, created := r.instances.Create(req.DesktopID)

	spawners, err := r.registry.Multicast(registry.RoleSpawner, protocol.CreateDesktopInstance{
		Type:        protocol.TypeCreateDesktopInstance,
		DesktopID:   id,
		Config:      req.Config,
		RequestedBy: c.ID(),
	})
	if err != nil {
		r.logger.Warn("create_desktop_instance forward failed", "desktop_id", id, "error", err)
		return
	}

	r.logger.Info("create_desktop_instance dispatched",
		"desktop_id", id,
		"created", created,
		"spawners", spawners,
		"requested_by", c.ID(),
	)
}

// handleRemoveInstance forwards removal to every spawner and deletes
// the record. Removing an unknown id is a no-op.
func (r *Relay) handleRemoveInstance(c *registry.Conn, env protocol.Envelope) {
	var req protocol.RemoveDesktopInstance
	if err := env.DecodeAs(&req); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	r.registry.Multicast(registry.RoleSpawner, protocol.RemoveDesktopInstance{
		Type:        protocol.TypeRemoveDesktopInstance,
		DesktopID:   req.DesktopID,
		RequestedBy: c.ID(),
	})

	removed := r.instances.Remove(req.DesktopID)
	r.logger.Info("remove_desktop_instance dispatched",
		"desktop_id", req.DesktopID,
		"removed", removed,
		"requested_by", c.ID(),
	)
}

// handleListInstances replies with a snapshot, to the requester only.
func (r *Relay) handleListInstances(c *registry.Conn) {
	err := c.Send(protocol.DesktopInstancesList{
		Type:      protocol.TypeDesktopInstancesList,
		Instances: r.instances.List(),
	})
	if err != nil {
		r.logger.Debug("desktop_instances_list send failed", "conn_id", c.ID(), "error", err)
	}
}

// handleInstanceStatus applies a spawner progress report to the
// instance table and passes the raw message through to all consumers
// unmodified.
func (r *Relay) handleInstanceStatus(c *registry.Conn, env protocol.Envelope) {
	var status protocol.DesktopInstanceStatus
	if err := env.DecodeAs(&status); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	r.instances.UpdateStatus(status.DesktopID, status.ScreenID, instance.Status(status.Status), status.ClientID)

	r.registry.MulticastRaw(registry.RoleConsumer, env.Raw)
}
