package models

import "testing"

func TestFollowUpConditionValid(t *testing.T) {
	for _, c := range []FollowUpCondition{
		ConditionNotOpenedWithinDelay,
		ConditionNotClickedWithinDelay,
		ConditionSentAnyway,
	} {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if FollowUpCondition("opened_twice").Valid() {
		t.Error("unknown condition accepted")
	}
	if FollowUpCondition("").Valid() {
		t.Error("empty condition accepted")
	}
}

func TestQualifyingStatuses(t *testing.T) {
	contains := func(list []MessageStatus, s MessageStatus) bool {
		for _, x := range list {
			if x == s {
				return true
			}
		}
		return false
	}

	t.Run("not opened excludes opened mail", func(t *testing.T) {
		got := ConditionNotOpenedWithinDelay.QualifyingStatuses()
		if contains(got, MessageStatusOpened) {
			t.Error("opened mail qualifies for not_opened condition")
		}
		if !contains(got, MessageStatusSent) || !contains(got, MessageStatusDelivered) {
			t.Error("sent/delivered mail must qualify")
		}
	})

	t.Run("not clicked includes opened but not clicked mail", func(t *testing.T) {
		got := ConditionNotClickedWithinDelay.QualifyingStatuses()
		if !contains(got, MessageStatusOpened) {
			t.Error("opened mail must qualify for not_clicked condition")
		}
		if contains(got, MessageStatusClicked) {
			t.Error("clicked mail qualifies for not_clicked condition")
		}
	})

	t.Run("sent anyway never includes failed or queued states", func(t *testing.T) {
		got := ConditionSentAnyway.QualifyingStatuses()
		for _, s := range []MessageStatus{MessageStatusFailed, MessageStatusDraft, MessageStatusSending} {
			if contains(got, s) {
				t.Errorf("%s qualifies for sent_anyway", s)
			}
		}
		if !contains(got, MessageStatusClicked) {
			t.Error("clicked mail must qualify for sent_anyway")
		}
	})

	t.Run("unknown condition yields nothing", func(t *testing.T) {
		if got := FollowUpCondition("bogus").QualifyingStatuses(); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}
