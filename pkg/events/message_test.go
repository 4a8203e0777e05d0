package events

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

type sampleEvent struct {
	ApplicationID string   `json:"application_id"`
	Domains       []string `json:"domains"`
}

func TestNewEventMessage_SetsMetadata(t *testing.T) {
	id := uuid.New()
	msg, err := NewEventMessage(id, 2, sampleEvent{ApplicationID: "a1"})
	if err != nil {
		t.Fatalf("NewEventMessage: %v", err)
	}
	if got := msg.Metadata.Get(MetadataEventID); got != id.String() {
		t.Errorf("event_id: got %q, want %q", got, id.String())
	}
	if got := msg.Metadata.Get(MetadataEventVersion); got != "2" {
		t.Errorf("event_version: got %q, want %q", got, "2")
	}
	if msg.UUID == "" {
		t.Error("expected message UUID to be set")
	}
}

func TestNewEventMessage_UnmarshalablePayload(t *testing.T) {
	if _, err := NewEventMessage(uuid.New(), 1, make(chan int)); err == nil {
		t.Fatal("expected marshal error for channel payload")
	}
}

func TestDecodeMessage(t *testing.T) {
	msg, err := NewEventMessage(uuid.New(), 1, sampleEvent{ApplicationID: "a1", Domains: []string{"alpha.com"}})
	if err != nil {
		t.Fatalf("NewEventMessage: %v", err)
	}

	got, err := DecodeMessage[sampleEvent](msg)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.ApplicationID != "a1" || len(got.Domains) != 1 || got.Domains[0] != "alpha.com" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestDecodeMessage_InvalidPayload(t *testing.T) {
	msg := message.NewMessage("id", []byte("not json"))
	if _, err := DecodeMessage[sampleEvent](msg); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestInjectTrace_SetsTraceparent(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "save-application")
	defer span.End()

	msgs := []*message.Message{message.NewMessage("1", nil), message.NewMessage("2", nil)}
	injectTrace(ctx, msgs)

	for _, m := range msgs {
		if m.Metadata.Get("traceparent") == "" {
			t.Errorf("message %s: expected traceparent metadata", m.UUID)
		}
	}
}
