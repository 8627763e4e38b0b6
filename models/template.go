package models

import (
	"gorm.io/gorm"
)

// Template holds subject/body text with {{token}} placeholders. At most one
// template per campaign is primary at any committed instant; promotion
// demotes siblings in the same transaction (see store.PromotePrimaryTemplate).
type Template struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`

	Name            string `gorm:"not null" json:"name"`
	SubjectTemplate string `gorm:"not null" json:"subject_template"`
	BodyTemplate    string `gorm:"not null;type:text" json:"body_template"`

	// UserPrompt stores the instruction a generated template was authored
	// from, empty for hand-written templates.
	UserPrompt string `gorm:"type:text" json:"user_prompt"`

	IsPrimary bool `gorm:"default:false;index" json:"is_primary"`
}
