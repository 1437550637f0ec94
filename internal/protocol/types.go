package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrMissingType = errors.New("message has no type field")
)

// Type is the message type discriminator.
type Type string

// Message type catalogue.
const (
	// Connection lifecycle
	TypeHandshake             Type = "handshake"
	TypeHandshakeAck          Type = "handshake_ack"
	TypeConnectionEstablished Type = "connection_established"
	TypeClientDisconnect      Type = "client_disconnect"
	TypeError                 Type = "error"

	// Liveness
	TypePing Type = "ping"
	TypePong Type = "pong"

	// Consumer → producer capture control
	TypeStartDesktopStream Type = "start_desktop_stream"
	TypeStopDesktopStream  Type = "stop_desktop_stream"
	TypeStartCapture       Type = "start_capture"
	TypeStopCapture        Type = "stop_capture"
	TypeRequestScreenshot  Type = "request_screenshot"
	TypeCaptureScreenshot  Type = "capture_screenshot"
	TypeScreenshotError    Type = "screenshot_error"

	// Producer → consumer data
	TypeFrameData           Type = "frame_data"
	TypeDualScreenFrame     Type = "dual_screen_frame"
	TypeStreamStatus        Type = "stream_status"
	TypeDesktopStreamStatus Type = "desktop_stream_status"

	// Producer roster
	TypeGetDesktopClients  Type = "get_desktop_clients"
	TypeDesktopClientsList Type = "desktop_clients_list"

	// Producer connect/disconnect notifications
	TypeDesktopConnected             Type = "desktop_connected"
	TypeMultiMonitorDesktopConnected Type = "multi_monitor_desktop_connected"
	TypeDualScreenConnected          Type = "dual_screen_connected"
	TypeDesktopDisconnected          Type = "desktop_disconnected"
	TypeDualScreenDisconnected       Type = "dual_screen_disconnected"

	// Desktop instance lifecycle
	TypeCreateDesktopInstance Type = "create_desktop_instance"
	TypeRemoveDesktopInstance Type = "remove_desktop_instance"
	TypeListDesktopInstances  Type = "list_desktop_instances"
	TypeDesktopInstancesList  Type = "desktop_instances_list"
	TypeDesktopInstanceStatus Type = "desktop_instance_status"

	// Stubbed pass-through simulation
	TypeActionCommand        Type = "action_command"
	TypeActionResult         Type = "action_result"
	TypeFileOperation        Type = "file_operation"
	TypeFileOperationResult  Type = "file_operation_result"
	TypeWorkflowDataRequest  Type = "workflow_data_request"
	TypeWorkflowDataResponse Type = "workflow_data_response"
)

// Envelope carries the extracted type discriminator plus the raw payload
// for a second, message-specific decode (or verbatim pass-through).
type Envelope struct {
	Type Type
	Raw  []byte
}

// Decode extracts the type discriminator from raw message bytes.
func Decode(data []byte) (Envelope, error) {
	var probe struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Envelope{}, fmt.Errorf("parse message: %w", err)
	}
	if probe.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return Envelope{Type: probe.Type, Raw: data}, nil
}

// DecodeAs unmarshals the envelope payload into a typed message struct.
func (e Envelope) DecodeAs(v any) error {
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}
