package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	env, err := Decode([]byte(`{"type":"handshake","clientInfo":{"clientType":"desktop_capture"}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != TypeHandshake {
		t.Errorf("Type = %q, want %q", env.Type, TypeHandshake)
	}

	var hs Handshake
	if err := env.DecodeAs(&hs); err != nil {
		t.Fatalf("DecodeAs failed: %v", err)
	}
	if hs.ClientInfo.ClientType != "desktop_capture" {
		t.Errorf("ClientType = %q, want desktop_capture", hs.ClientInfo.ClientType)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{bad`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestDecode_MissingType(t *testing.T) {
	_, err := Decode([]byte(`{"clientInfo":{}}`))
	if !errors.Is(err, ErrMissingType) {
		t.Errorf("err = %v, want ErrMissingType", err)
	}
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	env, err := Decode([]byte(`{"type":"ping","bogus":true,"extra":{"nested":1}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != TypePing {
		t.Errorf("Type = %q, want ping", env.Type)
	}
}

func TestFrameData_RoundTripRoutingInfo(t *testing.T) {
	frame := FrameData{
		Type:            TypeFrameData,
		Width:           1920,
		Height:          1080,
		ServerTimestamp: 1700000000000,
		Config:          &CaptureConfig{Mode: ModeMultiMonitor, FPS: 10},
		RoutingInfo: &RoutingInfo{
			SourceClientID: "producer_1",
			MultiMonitor:   true,
		},
	}
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got FrameData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.RoutingInfo == nil || got.RoutingInfo.SourceClientID != "producer_1" {
		t.Errorf("RoutingInfo = %+v, want sourceClientId producer_1", got.RoutingInfo)
	}
	if !got.RoutingInfo.MultiMonitor {
		t.Error("MultiMonitor = false, want true")
	}
}
