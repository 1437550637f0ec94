package relay

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// withCaptureDefaults fills fields the request omitted.
func (r *Relay) withCaptureDefaults(cfg *protocol.CaptureConfig) protocol.CaptureConfig {
	out := protocol.CaptureConfig{}
	if cfg != nil {
		out = *cfg
	}
	def := r.cfg.CaptureDefaults
	if out.FPS == 0 {
		out.FPS = def.FPS
	}
	if out.Quality == 0 {
		out.Quality = def.Quality
	}
	if out.Scale == 0 {
		out.Scale = def.Scale
	}
	if out.Format == "" {
		out.Format = def.Format
	}
	return out
}

// handleStreamCommand routes start_desktop_stream / stop_desktop_stream
// to one targeted producer, or to every open producer when no target is
// given (legacy all-producers behavior).
//
// A missing target is a silent log-only no-op; only the screenshot path
// replies with an error. Asymmetry kept as observed.
func (r *Relay) handleStreamCommand(c *registry.Conn, env protocol.Envelope, start bool) {
	var cmd protocol.StreamCommand
	if err := env.DecodeAs(&cmd); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	outType := protocol.TypeStopCapture
	if start {
		outType = protocol.TypeStartCapture
	}
	out := protocol.CaptureCommand{
		Type:        outType,
		Config:      r.withCaptureDefaults(cmd.Config),
		RequestedBy: c.ID(),
	}

	if cmd.DesktopClientID != "" {
		p, ok := r.registry.FindProducer(cmd.DesktopClientID)
		if !ok || !p.IsOpen() {
			r.logger.Warn("stream command target not connected",
				"target", cmd.DesktopClientID,
				"msg_type", env.Type,
				"requested_by", c.ID(),
			)
			return
		}
		if err := p.Send(out); err != nil {
			r.logger.Warn("stream command send failed",
				"target", cmd.DesktopClientID,
				"error", err,
			)
			return
		}
		p.SetStreaming(start)
		return
	}

	for _, p := range r.registry.Producers() {
		if !p.IsOpen() {
			continue
		}
		if err := p.Send(out); err != nil {
			r.logger.Warn("stream command send failed",
				"target", p.ID(),
				"error", err,
			)
			continue
		}
		p.SetStreaming(start)
	}
}

// handleScreenshotRequest dispatches a one-shot capture. Unlike stream
// start/stop, a missing target produces an explicit screenshot_error
// reply to the requester.
func (r *Relay) handleScreenshotRequest(c *registry.Conn, env protocol.Envelope) {
	var req protocol.ScreenshotRequest
	if err := env.DecodeAs(&req); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	out := protocol.CaptureScreenshot{
		Type:        protocol.TypeCaptureScreenshot,
		RequestID:   requestID,
		MonitorID:   req.MonitorID,
		RequestedBy: c.ID(),
	}

	if req.DesktopClientID != "" {
		p, ok := r.registry.FindProducer(req.DesktopClientID)
		if !ok || !p.IsOpen() {
			r.screenshotError(c, "Desktop client not connected: "+req.DesktopClientID, req.DesktopClientID, requestID)
			return
		}
		if err := p.Send(out); err != nil {
			r.screenshotError(c, "Failed to dispatch screenshot request", req.DesktopClientID, requestID)
		}
		return
	}

	for _, p := range r.registry.Producers() {
		if !p.IsOpen() {
			continue
		}
		if err := p.Send(out); err != nil {
			r.logger.Warn("screenshot broadcast send failed",
				"target", p.ID(),
				"error", err,
			)
		}
	}
}

func (r *Relay) screenshotError(c *registry.Conn, msg, target, requestID string) {
	err := c.Send(protocol.ScreenshotError{
		Type:            protocol.TypeScreenshotError,
		Error:           msg,
		DesktopClientID: target,
		RequestID:       requestID,
	})
	if err != nil {
		r.logger.Debug("screenshot_error send failed", "conn_id", c.ID(), "error", err)
	}
}

// handleStreamStatus normalizes producer capture-state reports into the
// canonical desktop_stream_status shape and relays them to consumers.
func (r *Relay) handleStreamStatus(c *registry.Conn, env protocol.Envelope) {
	if !c.Role().Producer() {
		r.logger.Warn("stream status from non-producer dropped",
			"conn_id", c.ID(),
			"role", c.Role(),
		)
		return
	}

	var status protocol.StreamStatus
	if err := env.DecodeAs(&status); err != nil {
		r.sendError(c, "Failed to process message", err.Error())
		return
	}

	status.Type = protocol.TypeDesktopStreamStatus
	if status.DesktopClientID == "" {
		status.DesktopClientID = c.ID()
	}
	if status.Timestamp == 0 {
		status.Timestamp = time.Now().UnixMilli()
	}

	c.SetStreaming(status.Streaming)

	if _, err := r.registry.Multicast(registry.RoleConsumer, status); err != nil {
		r.logger.Warn("stream status relay failed", "conn_id", c.ID(), "error", err)
	}
}

// handleGetDesktopClients answers with the producer roster, to the
// requester only.
func (r *Relay) handleGetDesktopClients(c *registry.Conn) {
	producers := r.registry.Producers()

	clients := make([]protocol.DesktopClient, 0, len(producers))
	for _, p := range producers {
		ident := p.Identity()
		clients = append(clients, protocol.DesktopClient{
			DesktopClientID: ident.ID,
			Role:            string(ident.Role),
			DesktopID:       ident.ProducerID,
			ScreenID:        ident.ScreenID,
			Capabilities:    ident.Capabilities,
			Streaming:       p.Streaming(),
			MonitorCount:    ident.MonitorCount,
		})
	}

	err := c.Send(protocol.DesktopClientsList{
		Type:    protocol.TypeDesktopClientsList,
		Clients: clients,
	})
	if err != nil {
		r.logger.Debug("desktop_clients_list send failed", "conn_id", c.ID(), "error", err)
	}
}
