package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageStatus is the closed set of ledger row states.
type MessageStatus string

const (
	MessageStatusDraft         MessageStatus = "draft"
	MessageStatusSending       MessageStatus = "sending"
	MessageStatusSent          MessageStatus = "sent"
	MessageStatusFailed        MessageStatus = "failed"
	MessageStatusDelivered     MessageStatus = "delivered"
	MessageStatusOpened        MessageStatus = "opened"
	MessageStatusClicked       MessageStatus = "clicked"
	MessageStatusReplied       MessageStatus = "replied"
	MessageStatusHardBounced   MessageStatus = "hard_bounced"
	MessageStatusSoftBounced   MessageStatus = "soft_bounced"
	MessageStatusSpamComplaint MessageStatus = "spam_complaint"
	MessageStatusUnsubscribed  MessageStatus = "unsubscribed"
)

// SuccessfulTerminalStatuses are the states in which an initial send counts
// as delivered-for-good: a contact holding an initial record in one of these
// never receives another initial send.
var SuccessfulTerminalStatuses = []MessageStatus{
	MessageStatusSent,
	MessageStatusDelivered,
	MessageStatusOpened,
	MessageStatusClicked,
	MessageStatusReplied,
}

// OpenPreservedStatuses are states an open event must never downgrade.
var OpenPreservedStatuses = []MessageStatus{
	MessageStatusClicked,
	MessageStatusReplied,
	MessageStatusHardBounced,
	MessageStatusSpamComplaint,
	MessageStatusUnsubscribed,
}

// ClickPreservedStatuses are states a click event must never downgrade.
var ClickPreservedStatuses = []MessageStatus{
	MessageStatusReplied,
	MessageStatusHardBounced,
	MessageStatusSpamComplaint,
	MessageStatusUnsubscribed,
}

// ReplyPreservedStatuses are states a reply event must never downgrade.
var ReplyPreservedStatuses = []MessageStatus{
	MessageStatusHardBounced,
	MessageStatusSpamComplaint,
	MessageStatusUnsubscribed,
}

// SentMessage is a row in the sent-message ledger: the single source of
// truth for what was sent, attempted, opened and clicked. Engagement fields
// are monotonic; the store folds open and provider events in with atomic,
// status-guarded updates (see store.RecordOpen, store.RecordProviderEvent).
type SentMessage struct {
	gorm.Model
	CampaignID uint  `gorm:"not null;index" json:"campaign_id"`
	ContactID  uint  `gorm:"not null;index" json:"contact_id"`
	TemplateID *uint `gorm:"index" json:"template_id"`

	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"not null;type:text" json:"body"`

	Status       MessageStatus `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"`
	StatusReason string        `gorm:"type:text" json:"status_reason"`

	// TrackingToken correlates open-beacon hits back to this row. Unique,
	// assigned at creation, before any send attempt that could generate
	// engagement callbacks.
	TrackingToken string `gorm:"uniqueIndex;size:64" json:"tracking_token"`

	// ProviderMessageID is the Message-ID header stamped on the outgoing
	// mail, assigned at staging from the tracking token. Provider webhook
	// events may reference either identifier.
	ProviderMessageID string `gorm:"index" json:"provider_message_id"`

	SentAt      *time.Time `json:"sent_at"`
	DeliveredAt *time.Time `json:"delivered_at"`

	OpenedAt     *time.Time `json:"opened_at"`
	LastOpenedAt *time.Time `json:"last_opened_at"`
	LastOpenedIP string     `json:"last_opened_ip"`
	OpenCount    int        `gorm:"default:0" json:"open_count"`

	ClickedAt     *time.Time `json:"clicked_at"`
	LastClickedAt *time.Time `json:"last_clicked_at"`
	ClickCount    int        `gorm:"default:0" json:"click_count"`

	// FollowsUpOnID references the original ledger row when this message is
	// a follow-up; NULL marks an initial send. Together with
	// TriggeredByRuleID it carries the follow-up idempotency guarantee: at
	// most one row per (original, rule) pair.
	FollowsUpOnID     *uint `gorm:"index;uniqueIndex:idx_followup_once" json:"follows_up_on_id"`
	TriggeredByRuleID *uint `gorm:"uniqueIndex:idx_followup_once" json:"triggered_by_rule_id"`
}

// IsFollowUp reports whether this row was created by a follow-up rule.
func (m *SentMessage) IsFollowUp() bool {
	return m.FollowsUpOnID != nil
}

// MarkSendResult records a transport outcome: sending to sent with the sent
// timestamp, or sending to failed with the failure reason. The timestamp is
// set only on success.
func (m *SentMessage) MarkSendResult(ok bool, reason string, at time.Time) {
	if ok {
		m.Status = MessageStatusSent
		m.SentAt = &at
		m.StatusReason = ""
		return
	}
	m.Status = MessageStatusFailed
	m.StatusReason = reason
}

