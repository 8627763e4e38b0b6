package models

import (
	"time"

	"gorm.io/gorm"
)

// FollowUpCondition decides which prior sends qualify for a follow-up.
type FollowUpCondition string

const (
	ConditionNotOpenedWithinDelay  FollowUpCondition = "not_opened_within_delay"
	ConditionNotClickedWithinDelay FollowUpCondition = "not_clicked_within_delay"
	ConditionSentAnyway            FollowUpCondition = "sent_anyway"
)

// Valid reports whether the condition is one of the known values.
func (c FollowUpCondition) Valid() bool {
	switch c {
	case ConditionNotOpenedWithinDelay, ConditionNotClickedWithinDelay, ConditionSentAnyway:
		return true
	}
	return false
}

// QualifyingStatuses returns the message statuses an initial send may be in
// for this condition to consider it a follow-up candidate. An email is
// treated as unopened while it sits in sent/delivered or bounced; opened but
// unclicked mail additionally qualifies for the click condition.
func (c FollowUpCondition) QualifyingStatuses() []MessageStatus {
	switch c {
	case ConditionNotOpenedWithinDelay:
		return []MessageStatus{
			MessageStatusSent, MessageStatusDelivered,
			MessageStatusHardBounced, MessageStatusSoftBounced,
		}
	case ConditionNotClickedWithinDelay:
		return []MessageStatus{
			MessageStatusSent, MessageStatusDelivered, MessageStatusOpened,
			MessageStatusHardBounced, MessageStatusSoftBounced,
		}
	case ConditionSentAnyway:
		return []MessageStatus{
			MessageStatusSent, MessageStatusDelivered, MessageStatusOpened,
			MessageStatusClicked, MessageStatusReplied,
			MessageStatusHardBounced, MessageStatusSoftBounced,
			MessageStatusSpamComplaint, MessageStatusUnsubscribed,
		}
	}
	return nil
}

// FollowUpRule schedules at most one follow-up per (original message, rule)
// pair. Rules are created by the external rules-CRUD layer and consumed
// read-only by the follow-up engine.
type FollowUpRule struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index" json:"campaign_id" validate:"required"`

	OriginalTemplateID uint `gorm:"not null" json:"original_template_id" validate:"required"`
	FollowUpTemplateID uint `gorm:"not null" json:"follow_up_template_id" validate:"required"`

	// Delay is how long after the original send the rule becomes due.
	Delay     time.Duration     `gorm:"not null" json:"delay" validate:"gt=0"`
	Condition FollowUpCondition `gorm:"type:varchar(32);not null" json:"condition" validate:"required"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`
}
