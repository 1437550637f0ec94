package relay

import (
	"testing"

	"github.com/rickgao/screen-relay/internal/protocol"
)

func TestStartStream_Targeted(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	target, targetSink := rg.dial(t, "desktop_capture", "d1")
	_, otherSink := rg.dial(t, "desktop_capture", "d2")

	rg.send(t, viewer, protocol.StreamCommand{
		Type:            protocol.TypeStartDesktopStream,
		DesktopClientID: "d1",
		Config:          &protocol.CaptureConfig{FPS: 10},
	})

	raw := targetSink.firstOfType(t, protocol.TypeStartCapture)
	var cmd protocol.CaptureCommand
	decodeMsg(t, raw, &cmd)

	if cmd.Config.FPS != 10 {
		t.Errorf("fps = %d, want 10", cmd.Config.FPS)
	}
	// Omitted fields come from defaults.
	if cmd.Config.Quality != 80 {
		t.Errorf("quality = %d, want default 80", cmd.Config.Quality)
	}
	if cmd.Config.Format != "jpeg" {
		t.Errorf("format = %q, want default jpeg", cmd.Config.Format)
	}
	if cmd.RequestedBy != "v1" {
		t.Errorf("requestedBy = %q, want v1", cmd.RequestedBy)
	}

	if !target.Streaming() {
		t.Error("target streaming = false, want true")
	}

	settle()
	if n := otherSink.countType(protocol.TypeStartCapture); n != 0 {
		t.Errorf("untargeted producer received %d start_capture, want 0", n)
	}
}

func TestStartStream_BroadcastWithoutTarget(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	p1, sink1 := rg.dial(t, "desktop_capture", "d1")
	p2, sink2 := rg.dial(t, "multi_monitor_capture", "d2")

	rg.send(t, viewer, protocol.StreamCommand{Type: protocol.TypeStartDesktopStream})

	sink1.firstOfType(t, protocol.TypeStartCapture)
	sink2.firstOfType(t, protocol.TypeStartCapture)

	if !p1.Streaming() || !p2.Streaming() {
		t.Error("broadcast did not mark all producers streaming")
	}
}

func TestStopStream(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	producer, producerSink := rg.dial(t, "desktop_capture", "d1")
	producer.SetStreaming(true)

	rg.send(t, viewer, protocol.StreamCommand{
		Type:            protocol.TypeStopDesktopStream,
		DesktopClientID: "d1",
	})

	producerSink.firstOfType(t, protocol.TypeStopCapture)
	if producer.Streaming() {
		t.Error("streaming = true after stop, want false")
	}
}

func TestStartStream_MissingTargetIsSilent(t *testing.T) {
	rg := newRig(t)
	viewer, viewerSink := rg.dial(t, "viewer", "v1")
	before := viewerSink.count()

	rg.send(t, viewer, protocol.StreamCommand{
		Type:            protocol.TypeStartDesktopStream,
		DesktopClientID: "ghost",
	})
	settle()

	// Log-only no-op: no error reply of any kind. Asymmetric with the
	// screenshot path, kept as observed.
	if viewerSink.count() != before {
		t.Errorf("replies = %d, want 0", viewerSink.count()-before)
	}
}

func TestScreenshot_Targeted(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	_, producerSink := rg.dial(t, "desktop_capture", "d1")

	rg.send(t, viewer, protocol.ScreenshotRequest{
		Type:            protocol.TypeRequestScreenshot,
		DesktopClientID: "d1",
	})

	raw := producerSink.firstOfType(t, protocol.TypeCaptureScreenshot)
	var cmd protocol.CaptureScreenshot
	decodeMsg(t, raw, &cmd)

	if cmd.RequestID == "" {
		t.Error("requestId not generated")
	}
	if cmd.RequestedBy != "v1" {
		t.Errorf("requestedBy = %q, want v1", cmd.RequestedBy)
	}
}

func TestScreenshot_MissingTargetRepliesError(t *testing.T) {
	rg := newRig(t)
	viewer, viewerSink := rg.dial(t, "viewer", "v1")

	rg.send(t, viewer, protocol.ScreenshotRequest{
		Type:            protocol.TypeRequestScreenshot,
		DesktopClientID: "ghost",
		RequestID:       "req-9",
	})

	raw := viewerSink.firstOfType(t, protocol.TypeScreenshotError)
	var reply protocol.ScreenshotError
	decodeMsg(t, raw, &reply)

	if reply.DesktopClientID != "ghost" {
		t.Errorf("desktopClientId = %q, want ghost", reply.DesktopClientID)
	}
	if reply.RequestID != "req-9" {
		t.Errorf("requestId = %q, want req-9", reply.RequestID)
	}
}

func TestScreenshot_BroadcastWithoutTarget(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	_, sink1 := rg.dial(t, "desktop_capture", "d1")
	_, sink2 := rg.dial(t, "dual_screen_capture", "d2")

	rg.send(t, viewer, protocol.ScreenshotRequest{Type: protocol.TypeRequestScreenshot})

	sink1.firstOfType(t, protocol.TypeCaptureScreenshot)
	sink2.firstOfType(t, protocol.TypeCaptureScreenshot)
}

func TestStreamStatus_NormalizedRelay(t *testing.T) {
	rg := newRig(t)
	_, viewerSink := rg.dial(t, "viewer", "v1")
	producer, _ := rg.dial(t, "desktop_capture", "d1")

	// Legacy stream_status omits the client id; the relay fills it and
	// renames the type to the canonical shape.
	rg.send(t, producer, protocol.StreamStatus{
		Type:      protocol.TypeStreamStatus,
		Status:    "capturing",
		Streaming: true,
	})

	raw := viewerSink.firstOfType(t, protocol.TypeDesktopStreamStatus)
	var status protocol.StreamStatus
	decodeMsg(t, raw, &status)

	if status.DesktopClientID != "d1" {
		t.Errorf("desktopClientId = %q, want d1", status.DesktopClientID)
	}
	if status.Status != "capturing" {
		t.Errorf("status = %q, want capturing", status.Status)
	}
	if status.Timestamp == 0 {
		t.Error("timestamp not set")
	}
	if !producer.Streaming() {
		t.Error("producer streaming flag not updated")
	}
}

func TestStreamStatus_FromConsumerDropped(t *testing.T) {
	rg := newRig(t)
	sender, _ := rg.dial(t, "viewer", "v1")
	_, otherSink := rg.dial(t, "viewer", "v2")
	before := otherSink.count()

	rg.send(t, sender, protocol.StreamStatus{Type: protocol.TypeStreamStatus, Streaming: true})
	settle()

	if otherSink.count() != before {
		t.Error("stream status from a consumer was relayed")
	}
}

func TestGetDesktopClients(t *testing.T) {
	rg := newRig(t)
	viewer, viewerSink := rg.dial(t, "viewer", "v1")
	_, otherSink := rg.dial(t, "viewer", "v2")
	producer, _ := rg.dialInfo(t, protocol.ClientInfo{
		ClientType:   "multi_monitor_capture",
		ClientID:     "mm1",
		DesktopID:    "desk-1",
		MonitorCount: 2,
		Capabilities: []string{"screenshot"},
	})
	producer.SetStreaming(true)
	beforeOther := otherSink.count()

	rg.send(t, viewer, map[string]protocol.Type{"type": protocol.TypeGetDesktopClients})

	raw := viewerSink.firstOfType(t, protocol.TypeDesktopClientsList)
	var list protocol.DesktopClientsList
	decodeMsg(t, raw, &list)

	if len(list.Clients) != 1 {
		t.Fatalf("clients = %d, want 1", len(list.Clients))
	}
	client := list.Clients[0]
	if client.DesktopClientID != "mm1" {
		t.Errorf("desktopClientId = %q, want mm1", client.DesktopClientID)
	}
	if client.Role != "producer_multi_monitor" {
		t.Errorf("role = %q, want producer_multi_monitor", client.Role)
	}
	if !client.Streaming {
		t.Error("streaming = false, want true")
	}
	if client.MonitorCount != 2 {
		t.Errorf("monitorCount = %d, want 2", client.MonitorCount)
	}

	settle()
	// Roster goes to the requester only.
	if otherSink.count() != beforeOther {
		t.Error("roster leaked to a non-requesting consumer")
	}
}
