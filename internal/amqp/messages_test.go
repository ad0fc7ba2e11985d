package amqp

import (
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	sync := NewSyncMessage(42)
	body, err := sync.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := MessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindSync || got.AssignmentID != 42 {
		t.Errorf("got %+v, want sync message for assignment 42", got)
	}

	del := NewDeleteMessage("evt-7")
	body, err = del.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err = MessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindDelete || got.EventID != "evt-7" {
		t.Errorf("got %+v, want delete message for evt-7", got)
	}
}

func TestMessageFromJSONInvalid(t *testing.T) {
	if _, err := MessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
