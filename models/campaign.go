package models

import (
	"gorm.io/gorm"
)

// CampaignStatus is the closed set of campaign lifecycle states.
type CampaignStatus string

const (
	CampaignStatusDraft            CampaignStatus = "draft"
	CampaignStatusPending          CampaignStatus = "pending"
	CampaignStatusActive           CampaignStatus = "active"
	CampaignStatusSending          CampaignStatus = "sending"
	CampaignStatusCompleted        CampaignStatus = "completed"
	CampaignStatusActiveWithErrors CampaignStatus = "active_with_errors"
	CampaignStatusFailed           CampaignStatus = "failed"
	CampaignStatusErrorNoTemplate  CampaignStatus = "error_no_template"
)

// Sendable reports whether a dispatch run may begin from this status.
// "sending" is included so an operator can re-trigger a run that crashed
// mid-batch.
func (s CampaignStatus) Sendable() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusSending, CampaignStatusPending:
		return true
	}
	return false
}

// Campaign represents an outreach campaign. Status is mutated only by the
// lifecycle manager; everything else is owned by the external CRUD layer.
type Campaign struct {
	gorm.Model
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	Status CampaignStatus `gorm:"type:varchar(32);default:'draft'" json:"status"`

	// Relations (a campaign owns its contacts, templates and ledger rows
	// for its lifetime; deletion cascades)
	Contacts  []Contact      `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
	Templates []Template     `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"templates,omitempty"`
	Rules     []FollowUpRule `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"rules,omitempty"`
	Messages  []SentMessage  `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}
