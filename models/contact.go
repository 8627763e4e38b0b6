package models

import (
	"gorm.io/gorm"
)

// Contact is a campaign recipient. The engine treats contacts as read-only
// except for Unsubscribed, which external collaborators may flip at any time
// and which is a hard exclusion for all future sends.
type Contact struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`

	Email     string `gorm:"not null;index" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`

	CompanyName    string `json:"company_name"`
	CompanyWebsite string `json:"company_website"`
	JobTitle       string `json:"job_title"`
	Industry       string `json:"industry"`
	City           string `json:"city"`
	Country        string `json:"country"`
	LinkedinURL    string `json:"linkedin_url"`

	Unsubscribed bool `gorm:"default:false;index" json:"unsubscribed"`
}
