package producer

import (
	"encoding/json"
	"testing"
	"time"

	"homehold/internal/audit/domain"
)

// The stream's field names are consumed by cmd/worker; this pins them.
func TestMarshalEvent_WireShape(t *testing.T) {
	uid := int64(7)
	raw, err := MarshalEvent(&domain.Event{
		ID:        "e1",
		UserID:    &uid,
		Action:    "session.logout",
		Resource:  "session",
		IP:        "10.0.0.5:1234",
		CreatedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "userId", "action", "resource", "ip", "createdAt"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	if got["createdAt"] != "2026-08-28T12:00:00Z" {
		t.Errorf("createdAt = %v", got["createdAt"])
	}
	if _, ok := got["metadata"]; ok {
		t.Error("empty metadata should be omitted")
	}
}

func TestKafkaProducer_NilSafe(t *testing.T) {
	var p *KafkaProducer
	if err := p.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
