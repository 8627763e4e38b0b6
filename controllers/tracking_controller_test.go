package controllers

import (
	"testing"
	"time"
)

func TestParseWebhookBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{
			name: "wrapped events array",
			body: `{"events":[{"message_id":"m1","event":"delivered"},{"tracking_token":"t2","event":"open"}]}`,
			want: 2,
		},
		{
			name: "bare array",
			body: `[{"message_id":"m1","event":"bounce","details":"550 no such user"}]`,
			want: 1,
		},
		{
			name: "single object",
			body: `{"message_id":"m1","event":"click"}`,
			want: 1,
		},
		{
			name:    "malformed json",
			body:    `{"events": oops`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := parseWebhookBody([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("parsed %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestProviderEventIdentifier(t *testing.T) {
	ev := providerEvent{MessageID: "m1", Identifier: "i1", TrackingToken: "t1"}
	if got := ev.identifier(); got != "m1" {
		t.Errorf("identifier = %q, provider message id must win", got)
	}
	ev.MessageID = ""
	if got := ev.identifier(); got != "i1" {
		t.Errorf("identifier = %q, want identifier alias", got)
	}
	ev.Identifier = ""
	if got := ev.identifier(); got != "t1" {
		t.Errorf("identifier = %q, want tracking token fallback", got)
	}
}

func TestProviderEventType(t *testing.T) {
	ev := providerEvent{Event: "open", Type: "click"}
	if got := ev.eventType(); got != "open" {
		t.Errorf("eventType = %q, event field must win", got)
	}
	ev.Event = ""
	if got := ev.eventType(); got != "click" {
		t.Errorf("eventType = %q, want type alias", got)
	}
}

func TestProviderEventOccurredAt(t *testing.T) {
	ev := providerEvent{Timestamp: "2026-03-01T12:00:00Z"}
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := ev.occurredAt(); !got.Equal(want) {
		t.Errorf("occurredAt = %v, want %v", got, want)
	}

	before := time.Now()
	bad := providerEvent{Timestamp: "yesterday-ish"}
	got := bad.occurredAt()
	if got.Before(before.Add(-time.Minute)) {
		t.Errorf("unparseable timestamp should fall back to now, got %v", got)
	}
}
