package relay

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rickgao/screen-relay/internal/protocol"
)

func TestCreateInstance_GeneratesIDAndForwards(t *testing.T) {
	rg := newRig(t)
	viewer, viewerSink := rg.dial(t, "viewer", "v1")
	_, spawnerSink := rg.dial(t, "desktop_spawner", "s1")

	rg.send(t, viewer, protocol.CreateDesktopInstance{Type: protocol.TypeCreateDesktopInstance})

	raw := spawnerSink.firstOfType(t, protocol.TypeCreateDesktopInstance)
	var cmd protocol.CreateDesktopInstance
	decodeMsg(t, raw, &cmd)

	if cmd.DesktopID == "" {
		t.Fatal("forwarded command has no generated desktopId")
	}
	if cmd.RequestedBy != "v1" {
		t.Errorf("requestedBy = %q, want v1", cmd.RequestedBy)
	}

	// A later list from any connection sees the record as creating.
	rg.send(t, viewer, protocol.ListDesktopInstances{Type: protocol.TypeListDesktopInstances})
	var list protocol.DesktopInstancesList
	decodeMsg(t, viewerSink.firstOfType(t, protocol.TypeDesktopInstancesList), &list)

	if len(list.Instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(list.Instances))
	}
	if list.Instances[0].DesktopID != cmd.DesktopID {
		t.Errorf("desktopId = %q, want %q", list.Instances[0].DesktopID, cmd.DesktopID)
	}
	if list.Instances[0].Status != "creating" {
		t.Errorf("status = %q, want creating", list.Instances[0].Status)
	}
}

func TestCreateInstance_IdempotentOnRetry(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	_, spawnerSink := rg.dial(t, "desktop_spawner", "s1")

	req := protocol.CreateDesktopInstance{
		Type:      protocol.TypeCreateDesktopInstance,
		DesktopID: "desk-1",
	}
	rg.send(t, viewer, req)
	rg.send(t, viewer, req)
	spawnerSink.wait(t, 2)

	if rg.instances.Len() != 1 {
		t.Errorf("instances = %d, want 1", rg.instances.Len())
	}
	// Both requests are still forwarded to the spawner.
	if n := spawnerSink.countType(protocol.TypeCreateDesktopInstance); n != 2 {
		t.Errorf("forwarded creates = %d, want 2", n)
	}
}

func TestRemoveInstance_Idempotent(t *testing.T) {
	rg := newRig(t)
	viewer, _ := rg.dial(t, "viewer", "v1")
	_, spawnerSink := rg.dial(t, "desktop_spawner", "s1")

	rg.send(t, viewer, protocol.CreateDesktopInstance{
		Type:      protocol.TypeCreateDesktopInstance,
		DesktopID: "desk-1",
	})

	remove := protocol.RemoveDesktopInstance{
		Type:      protocol.TypeRemoveDesktopInstance,
		DesktopID: "desk-1",
	}
	rg.send(t, viewer, remove)
	rg.send(t, viewer, remove) // second call is a no-op, no error
	spawnerSink.wait(t, 4)     // ack + forwarded create + both removes

	if rg.instances.Len() != 0 {
		t.Errorf("instances = %d, want 0", rg.instances.Len())
	}
	if n := spawnerSink.countType(protocol.TypeRemoveDesktopInstance); n < 1 {
		t.Error("removal not forwarded to spawner")
	}
}

func TestInstanceStatus_UpdatesAndPassesThrough(t *testing.T) {
	rg := newRig(t)
	viewer, viewerSink := rg.dial(t, "viewer", "v1")
	spawner, _ := rg.dial(t, "desktop_spawner", "s1")

	rg.send(t, viewer, protocol.CreateDesktopInstance{
		Type:      protocol.TypeCreateDesktopInstance,
		DesktopID: "desk-1",
	})

	// Raw bytes must reach consumers unmodified (pass-through, not
	// re-enriched), including fields the relay does not model.
	raw := []byte(`{"type":"desktop_instance_status","desktopId":"desk-1","screenId":"screen-0","status":"connected","clientId":"p1","spawnerExtra":42}`)
	rg.relay.HandleMessage(spawner, raw)

	got := viewerSink.firstOfType(t, protocol.TypeDesktopInstanceStatus)
	if !bytes.Equal(got, raw) {
		t.Errorf("pass-through mutated message:\n got %s\nwant %s", got, raw)
	}

	snaps := rg.instances.List()
	if len(snaps) != 1 {
		t.Fatalf("instances = %d, want 1", len(snaps))
	}
	if snaps[0].Status != "connected" {
		t.Errorf("instance status = %q, want connected", snaps[0].Status)
	}
	screen, ok := snaps[0].Screens["screen-0"]
	if !ok {
		t.Fatal("screen-0 entry missing")
	}
	if screen.ProducerConnectionID != "p1" {
		t.Errorf("producerConnectionId = %q, want p1", screen.ProducerConnectionID)
	}
}

func TestListInstances_SnapshotShape(t *testing.T) {
	rg := newRig(t)
	viewer, viewerSink := rg.dial(t, "viewer", "v1")

	rg.send(t, viewer, protocol.CreateDesktopInstance{
		Type:      protocol.TypeCreateDesktopInstance,
		DesktopID: "desk-1",
	})
	rg.send(t, viewer, protocol.ListDesktopInstances{Type: protocol.TypeListDesktopInstances})

	raw := viewerSink.firstOfType(t, protocol.TypeDesktopInstancesList)

	// The snapshot must be well-formed JSON with the documented keys.
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	instances, ok := decoded["instances"].([]any)
	if !ok || len(instances) != 1 {
		t.Fatalf("instances field = %v, want 1 entry", decoded["instances"])
	}
	entry := instances[0].(map[string]any)
	for _, key := range []string{"desktopId", "status", "screens", "createdAt"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("snapshot entry missing %q", key)
		}
	}
}
