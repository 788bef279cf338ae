package amqp

import (
	"testing"
)

func TestDocumentSyncMessageRoundTrip(t *testing.T) {
	msg := NewDocumentSyncMessage("default", 42)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := DocumentSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.HouseholdID != "default" || got.Revision != 42 {
		t.Fatalf("got %+v, want household=default revision=42", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not preserved")
	}
}

func TestDocumentSyncMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := DocumentSyncMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
