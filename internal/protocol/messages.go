package protocol

import "encoding/json"

// Monitor describes a single physical monitor advertised by a
// multi-monitor producer at handshake time.
type Monitor struct {
	ID      int    `json:"id"`
	Label   string `json:"label,omitempty"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// ClientInfo is the self-description a client sends in its handshake.
type ClientInfo struct {
	ClientType   string    `json:"clientType"`
	ClientID     string    `json:"clientId,omitempty"`
	Capabilities []string  `json:"capabilities,omitempty"`
	DesktopID    string    `json:"desktopId,omitempty"`
	ScreenID     string    `json:"screenId,omitempty"`
	MonitorCount int       `json:"monitorCount,omitempty"`
	MonitorInfo  []Monitor `json:"monitorInfo,omitempty"`
}

// Handshake is the first message on every connection.
type Handshake struct {
	Type       Type       `json:"type"`
	ClientInfo ClientInfo `json:"clientInfo"`
}

// HandshakeAck confirms classification back to the client.
type HandshakeAck struct {
	Type         Type       `json:"type"`
	ClientInfo   ClientInfo `json:"clientInfo"`
	ServerStatus string     `json:"serverStatus"`
}

// ConnectionEstablished is sent once when the socket is accepted,
// before any handshake.
type ConnectionEstablished struct {
	Type       Type   `json:"type"`
	Message    string `json:"message,omitempty"`
	ServerTime int64  `json:"serverTime"`
}

// Ping and Pong are the application-level liveness messages.
type Ping struct {
	Type      Type  `json:"type"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

type Pong struct {
	Type      Type  `json:"type"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Error reports a malformed or unroutable message to its sender.
type Error struct {
	Type    Type   `json:"type"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ClientDisconnect is an advisory graceful-disconnect signal.
type ClientDisconnect struct {
	Type   Type   `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// CaptureConfig controls producer capture. Mode distinguishes single,
// multi_monitor and dual_screen capture.
type CaptureConfig struct {
	FPS     int     `json:"fps,omitempty"`
	Quality int     `json:"quality,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Format  string  `json:"format,omitempty"`
	Mode    string  `json:"mode,omitempty"`
}

// Capture modes carried in CaptureConfig.Mode.
const (
	ModeSingle       = "single"
	ModeMultiMonitor = "multi_monitor"
	ModeDualScreen   = "dual_screen"
)

// StreamCommand is a consumer request to start or stop a producer's
// capture. An empty DesktopClientID targets every producer.
type StreamCommand struct {
	Type            Type           `json:"type"`
	DesktopClientID string         `json:"desktopClientId,omitempty"`
	Config          *CaptureConfig `json:"config,omitempty"`
}

// CaptureCommand is the producer-facing start/stop command.
type CaptureCommand struct {
	Type        Type          `json:"type"`
	Config      CaptureConfig `json:"config"`
	RequestedBy string        `json:"requestedBy,omitempty"`
}

// ScreenshotRequest asks a producer for a one-shot capture.
type ScreenshotRequest struct {
	Type            Type   `json:"type"`
	DesktopClientID string `json:"desktopClientId,omitempty"`
	RequestID       string `json:"requestId,omitempty"`
	MonitorID       int    `json:"monitorId,omitempty"`
}

// CaptureScreenshot is the producer-facing one-shot capture command.
type CaptureScreenshot struct {
	Type        Type   `json:"type"`
	RequestID   string `json:"requestId"`
	MonitorID   int    `json:"monitorId,omitempty"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ScreenshotError tells the requesting consumer a screenshot could not
// be dispatched.
type ScreenshotError struct {
	Type            Type   `json:"type"`
	Error           string `json:"error"`
	DesktopClientID string `json:"desktopClientId,omitempty"`
	RequestID       string `json:"requestId,omitempty"`
}

// RoutingInfo is attached by the relay to every fanned-out frame.
type RoutingInfo struct {
	SourceClientID string `json:"sourceClientId"`
	ProducerID     string `json:"producerId,omitempty"`
	ScreenID       string `json:"screenId,omitempty"`
	MonitorID      int    `json:"monitorId,omitempty"`
	MultiMonitor   bool   `json:"multiMonitor"`
}

// FrameData is a captured frame from a producer. The same shape serves
// frame_data and dual_screen_frame; dual-screen frames carry ScreenID.
type FrameData struct {
	Type      Type           `json:"type"`
	Image     string         `json:"image,omitempty"` // base64 payload
	Width     int            `json:"width,omitempty"`
	Height    int            `json:"height,omitempty"`
	MonitorID int            `json:"monitorId,omitempty"`
	ScreenID  string         `json:"screenId,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Config    *CaptureConfig `json:"config,omitempty"`

	// Set by the relay before fan-out.
	ServerTimestamp int64        `json:"serverTimestamp,omitempty"`
	RoutingInfo     *RoutingInfo `json:"routingInfo,omitempty"`
}

// StreamStatus is a producer's capture-state report. The relay
// normalizes stream_status and desktop_stream_status into the canonical
// desktop_stream_status shape before relaying.
type StreamStatus struct {
	Type            Type   `json:"type"`
	DesktopClientID string `json:"desktopClientId,omitempty"`
	ScreenID        string `json:"screenId,omitempty"`
	Status          string `json:"status,omitempty"`
	Streaming       bool   `json:"streaming"`
	Error           string `json:"error,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"`
}

// DesktopClient is one entry in the producer roster.
type DesktopClient struct {
	DesktopClientID string   `json:"desktopClientId"`
	Role            string   `json:"role"`
	DesktopID       string   `json:"desktopId,omitempty"`
	ScreenID        string   `json:"screenId,omitempty"`
	Capabilities    []string `json:"capabilities,omitempty"`
	Streaming       bool     `json:"streaming"`
	MonitorCount    int      `json:"monitorCount,omitempty"`
}

// DesktopClientsList answers get_desktop_clients.
type DesktopClientsList struct {
	Type    Type            `json:"type"`
	Clients []DesktopClient `json:"clients"`
}

// ProducerConnected announces a newly classified producer to consumers.
// The type field carries the role-specific notification name.
type ProducerConnected struct {
	Type            Type      `json:"type"`
	DesktopClientID string    `json:"desktopClientId"`
	DesktopID       string    `json:"desktopId,omitempty"`
	ScreenID        string    `json:"screenId,omitempty"`
	Capabilities    []string  `json:"capabilities,omitempty"`
	MonitorCount    int       `json:"monitorCount,omitempty"`
	MonitorInfo     []Monitor `json:"monitorInfo,omitempty"`
}

// ProducerDisconnected announces a producer close to consumers.
type ProducerDisconnected struct {
	Type            Type   `json:"type"`
	DesktopClientID string `json:"desktopClientId"`
	DesktopID       string `json:"desktopId,omitempty"`
}

// CreateDesktopInstance requests a spawner to provision a desktop
// instance. The relay fills DesktopID when the consumer omits it.
type CreateDesktopInstance struct {
	Type        Type            `json:"type"`
	DesktopID   string          `json:"desktopId,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
	RequestedBy string          `json:"requestedBy,omitempty"`
}

// RemoveDesktopInstance requests teardown of a desktop instance.
type RemoveDesktopInstance struct {
	Type        Type   `json:"type"`
	DesktopID   string `json:"desktopId"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ListDesktopInstances requests a snapshot of all desktop instances.
type ListDesktopInstances struct {
	Type Type `json:"type"`
}

// DesktopInstanceScreen is the per-screen state inside a snapshot.
type DesktopInstanceScreen struct {
	Status               string `json:"status"`
	ProducerConnectionID string `json:"producerConnectionId,omitempty"`
}

// DesktopInstanceSnapshot is one instance in a desktop_instances_list.
type DesktopInstanceSnapshot struct {
	DesktopID string                           `json:"desktopId"`
	Status    string                           `json:"status"`
	Screens   map[string]DesktopInstanceScreen `json:"screens"`
	CreatedAt int64                            `json:"createdAt"`
}

// DesktopInstancesList answers list_desktop_instances.
type DesktopInstancesList struct {
	Type      Type                      `json:"type"`
	Instances []DesktopInstanceSnapshot `json:"instances"`
}

// DesktopInstanceStatus reports spawner-side instance progress. The raw
// message is passed through to consumers unmodified.
type DesktopInstanceStatus struct {
	Type      Type   `json:"type"`
	DesktopID string `json:"desktopId"`
	ScreenID  string `json:"screenId,omitempty"`
	Status    string `json:"status"`
	ClientID  string `json:"clientId,omitempty"`
}

// SimRequest is the common shape of the stubbed pass-through requests
// (action_command, file_operation, workflow_data_request).
type SimRequest struct {
	Type      Type            `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SimResult is the simulated reply to a SimRequest.
type SimResult struct {
	Type      Type            `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
