package relay

import (
	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// handleSimulated answers the stubbed pass-through requests
// (action_command, file_operation, workflow_data_request) with a
// simulated success result echoing the request id. Not part of the
// relay core; kept for UI compatibility.
func (r *Relay) handleSimulated(c *registry.Conn, env protocol.Envelope, resultType protocol.Type) {
	var req protocol.SimRequest
	if err := env.DecodeAs(&req); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	err := c.Send(protocol.SimResult{
		Type:      resultType,
		RequestID: req.RequestID,
		Status:    "simulated",
	})
	if err != nil {
		r.logger.Debug("simulated result send failed",
			"conn_id", c.ID(),
			"msg_type", env.Type,
			"error", err,
		)
	}
}
