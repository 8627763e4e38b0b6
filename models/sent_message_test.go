package models

import (
	"testing"
	"time"
)

func TestMarkSendResult(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		msg := &SentMessage{Status: MessageStatusSending}
		msg.MarkSendResult(true, "", at)
		if msg.Status != MessageStatusSent {
			t.Errorf("status = %s, want sent", msg.Status)
		}
		if msg.SentAt == nil || !msg.SentAt.Equal(at) {
			t.Errorf("SentAt = %v, want %v", msg.SentAt, at)
		}
	})

	t.Run("failure", func(t *testing.T) {
		msg := &SentMessage{Status: MessageStatusSending}
		msg.MarkSendResult(false, "connection refused", at)
		if msg.Status != MessageStatusFailed {
			t.Errorf("status = %s, want failed", msg.Status)
		}
		if msg.StatusReason != "connection refused" {
			t.Errorf("StatusReason = %q", msg.StatusReason)
		}
		if msg.SentAt != nil {
			t.Error("SentAt set on failure")
		}
	})
}

func TestPreservedStatusSets(t *testing.T) {
	contains := func(list []MessageStatus, s MessageStatus) bool {
		for _, x := range list {
			if x == s {
				return true
			}
		}
		return false
	}

	// Every click-preserved state is also open-preserved, and every
	// reply-preserved state is also click-preserved: stronger signals
	// guard against strictly more downgrades.
	for _, s := range ClickPreservedStatuses {
		if !contains(OpenPreservedStatuses, s) {
			t.Errorf("%s preserved against clicks but not opens", s)
		}
	}
	for _, s := range ReplyPreservedStatuses {
		if !contains(ClickPreservedStatuses, s) {
			t.Errorf("%s preserved against replies but not clicks", s)
		}
	}
	if !contains(OpenPreservedStatuses, MessageStatusClicked) {
		t.Error("an open may downgrade clicked")
	}
	if contains(OpenPreservedStatuses, MessageStatusDelivered) {
		t.Error("delivered must be upgradeable by an open")
	}
}

func TestIsFollowUp(t *testing.T) {
	initial := &SentMessage{}
	if initial.IsFollowUp() {
		t.Error("initial send reported as follow-up")
	}
	origID := uint(7)
	followUp := &SentMessage{FollowsUpOnID: &origID}
	if !followUp.IsFollowUp() {
		t.Error("follow-up not detected")
	}
}
