package store

import (
	"testing"
	"time"

	"reachly/models"
)

func TestRecordOpen(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown token is not an error", func(t *testing.T) {
		s := newTestStore(t)
		recorded, err := s.RecordOpen("no-such-token", "10.0.0.1", at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if recorded {
			t.Error("unknown token reported as recorded")
		}
	})

	t.Run("first open sets everything", func(t *testing.T) {
		s := newTestStore(t)
		row := seedMessage(t, s, &models.SentMessage{
			CampaignID: 1, ContactID: 1,
			Status:        models.MessageStatusSent,
			TrackingToken: "tok1",
		})

		recorded, err := s.RecordOpen("tok1", "10.0.0.1", at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !recorded {
			t.Fatal("open not recorded")
		}

		got := reloadMessage(t, s, row.ID)
		if got.Status != models.MessageStatusOpened {
			t.Errorf("status = %s, want opened", got.Status)
		}
		if got.OpenCount != 1 {
			t.Errorf("OpenCount = %d, want 1", got.OpenCount)
		}
		if got.OpenedAt == nil || got.LastOpenedAt == nil {
			t.Fatal("open timestamps not set")
		}
		if got.LastOpenedIP != "10.0.0.1" {
			t.Errorf("LastOpenedIP = %q", got.LastOpenedIP)
		}
	})

	t.Run("repeat open advances only the moving fields", func(t *testing.T) {
		s := newTestStore(t)
		row := seedMessage(t, s, &models.SentMessage{
			CampaignID: 1, ContactID: 1,
			Status:        models.MessageStatusSent,
			TrackingToken: "tok1",
		})
		second := at.Add(2 * time.Hour)

		if _, err := s.RecordOpen("tok1", "10.0.0.1", at); err != nil {
			t.Fatalf("first open: %v", err)
		}
		if _, err := s.RecordOpen("tok1", "10.9.9.9", second); err != nil {
			t.Fatalf("second open: %v", err)
		}

		got := reloadMessage(t, s, row.ID)
		if got.OpenCount != 2 {
			t.Errorf("OpenCount = %d, want 2", got.OpenCount)
		}
		if !got.OpenedAt.Equal(at) {
			t.Errorf("OpenedAt moved to %v", got.OpenedAt)
		}
		if !got.LastOpenedAt.Equal(second) {
			t.Errorf("LastOpenedAt = %v, want %v", got.LastOpenedAt, second)
		}
		if got.LastOpenedIP != "10.0.0.1" {
			t.Errorf("LastOpenedIP changed to %q", got.LastOpenedIP)
		}
	})

	t.Run("open never downgrades a stronger state", func(t *testing.T) {
		for _, status := range models.OpenPreservedStatuses {
			s := newTestStore(t)
			row := seedMessage(t, s, &models.SentMessage{
				CampaignID: 1, ContactID: 1,
				Status:        status,
				TrackingToken: "tok1",
			})

			if _, err := s.RecordOpen("tok1", "10.0.0.1", at); err != nil {
				t.Fatalf("%s: %v", status, err)
			}
			got := reloadMessage(t, s, row.ID)
			if got.Status != status {
				t.Errorf("open downgraded %s to %s", status, got.Status)
			}
			if got.OpenCount != 1 {
				t.Errorf("%s: open not counted", status)
			}
		}
	})
}

func TestRecordProviderEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, s *Store, status models.MessageStatus) *models.SentMessage {
		return seedMessage(t, s, &models.SentMessage{
			CampaignID: 1, ContactID: 1,
			Status:            status,
			TrackingToken:     "tok1",
			ProviderMessageID: "<tok1@reachly.io>",
		})
	}

	tests := []struct {
		name       string
		before     models.MessageStatus
		event      string
		wantStatus models.MessageStatus
		wantApply  bool
	}{
		{"delivered after sent", models.MessageStatusSent, "delivered", models.MessageStatusDelivered, true},
		{"delivered does not mask open", models.MessageStatusOpened, "delivered", models.MessageStatusOpened, true},
		{"open after delivered", models.MessageStatusDelivered, "open", models.MessageStatusOpened, true},
		{"click after open", models.MessageStatusOpened, "click", models.MessageStatusClicked, true},
		{"click does not downgrade reply", models.MessageStatusReplied, "click", models.MessageStatusReplied, true},
		{"reply wins over click", models.MessageStatusClicked, "reply", models.MessageStatusReplied, true},
		{"reply does not override bounce", models.MessageStatusHardBounced, "reply", models.MessageStatusHardBounced, true},
		{"bounce always wins", models.MessageStatusClicked, "bounce", models.MessageStatusHardBounced, true},
		{"soft bounce", models.MessageStatusSent, "soft_bounce", models.MessageStatusSoftBounced, true},
		{"complaint always wins", models.MessageStatusOpened, "complaint", models.MessageStatusSpamComplaint, true},
		{"unsubscribe always wins", models.MessageStatusClicked, "unsubscribe", models.MessageStatusUnsubscribed, true},
		{"unknown event ignored", models.MessageStatusSent, "mystery", models.MessageStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			row := seed(t, s, tt.before)

			applied, err := s.RecordProviderEvent("<tok1@reachly.io>", tt.event, at, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if applied != tt.wantApply {
				t.Errorf("applied = %v, want %v", applied, tt.wantApply)
			}
			if got := reloadMessage(t, s, row.ID); got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
		})
	}

	t.Run("matches by tracking token too", func(t *testing.T) {
		s := newTestStore(t)
		row := seed(t, s, models.MessageStatusSent)

		applied, err := s.RecordProviderEvent("tok1", "delivered", at, "")
		if err != nil || !applied {
			t.Fatalf("applied=%v err=%v", applied, err)
		}
		if got := reloadMessage(t, s, row.ID); got.Status != models.MessageStatusDelivered {
			t.Errorf("status = %s, want delivered", got.Status)
		}
	})

	t.Run("unknown identifier is not an error", func(t *testing.T) {
		s := newTestStore(t)
		applied, err := s.RecordProviderEvent("<nobody@nowhere>", "delivered", at, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if applied {
			t.Error("unknown identifier reported as applied")
		}
	})

	t.Run("delivered timestamp set once", func(t *testing.T) {
		s := newTestStore(t)
		row := seed(t, s, models.MessageStatusSent)
		later := at.Add(time.Hour)

		if _, err := s.RecordProviderEvent("tok1", "delivered", at, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := s.RecordProviderEvent("tok1", "delivered", later, ""); err != nil {
			t.Fatal(err)
		}
		got := reloadMessage(t, s, row.ID)
		if got.DeliveredAt == nil || !got.DeliveredAt.Equal(at) {
			t.Errorf("DeliveredAt = %v, want %v", got.DeliveredAt, at)
		}
	})

	t.Run("click counters accumulate", func(t *testing.T) {
		s := newTestStore(t)
		row := seed(t, s, models.MessageStatusOpened)

		if _, err := s.RecordProviderEvent("tok1", "click", at, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := s.RecordProviderEvent("tok1", "click", at.Add(time.Minute), ""); err != nil {
			t.Fatal(err)
		}
		got := reloadMessage(t, s, row.ID)
		if got.ClickCount != 2 {
			t.Errorf("ClickCount = %d, want 2", got.ClickCount)
		}
		if got.ClickedAt == nil || !got.ClickedAt.Equal(at) {
			t.Errorf("ClickedAt = %v, want %v", got.ClickedAt, at)
		}
	})

	t.Run("bounce details land in the status reason", func(t *testing.T) {
		s := newTestStore(t)
		row := seed(t, s, models.MessageStatusSent)

		if _, err := s.RecordProviderEvent("tok1", "bounce", at, "550 no such user"); err != nil {
			t.Fatal(err)
		}
		got := reloadMessage(t, s, row.ID)
		if got.Status != models.MessageStatusHardBounced {
			t.Errorf("status = %s, want hard_bounced", got.Status)
		}
		if got.StatusReason != "550 no such user" {
			t.Errorf("StatusReason = %q", got.StatusReason)
		}
	})
}
