package events_test

import (
	"context"
	"testing"

	"github.com/p-n-ai/stemblast/internal/events"
)

func TestMemoryLogger_LogEvent(t *testing.T) {
	logger := events.NewMemoryLogger()

	err := logger.LogEvent(context.Background(), events.Event{
		RequestID: "req-1",
		EventType: events.TypeServed,
		BankKey:   "K_Maths_Easy",
		Data: map[string]any{
			"history_len": 3,
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	got := logger.Events()
	if len(got) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(got))
	}
	if got[0].EventType != events.TypeServed {
		t.Errorf("EventType = %q, want %s", got[0].EventType, events.TypeServed)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryLogger_Validation(t *testing.T) {
	logger := events.NewMemoryLogger()

	tests := []struct {
		name  string
		event events.Event
	}{
		{"missing type", events.Event{RequestID: "req-1"}},
		{"missing request id", events.Event{EventType: events.TypeFallback}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := logger.LogEvent(context.Background(), tt.event); err == nil {
				t.Fatal("LogEvent() should reject an incomplete event")
			}
		})
	}
	if n := len(logger.Events()); n != 0 {
		t.Errorf("rejected events were stored: %d", n)
	}
}

func TestNopLogger(t *testing.T) {
	var logger events.Logger = events.NopLogger{}
	if err := logger.LogEvent(context.Background(), events.Event{}); err != nil {
		t.Errorf("NopLogger.LogEvent() error = %v", err)
	}
}

func TestPostgresLogger_LogEvent_NilPool(t *testing.T) {
	logger := events.NewPostgresLogger(nil)

	err := logger.LogEvent(context.Background(), events.Event{
		RequestID: "req-1",
		EventType: events.TypeServed,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}
