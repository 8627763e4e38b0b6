package store

import (
	"errors"

	"gorm.io/gorm"

	"reachly/apperrors"
	"reachly/models"
	"reachly/utils"
)

// Store is the GORM-backed persistence layer for the dispatch engine.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithSession returns a Store bound to a fresh session, so each scheduler
// job invocation gets its own scoped handle.
func (s *Store) WithSession() *Store {
	return &Store{db: s.db.Session(&gorm.Session{NewDB: true})}
}

// GetCampaign loads a campaign by id.
func (s *Store) GetCampaign(id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("campaign", id)
		}
		return nil, apperrors.NewPersistence("campaign lookup", err)
	}
	return &campaign, nil
}

// UpdateCampaignStatus commits a status transition immediately and
// independently of any batch in flight.
func (s *Store) UpdateCampaignStatus(id uint, status models.CampaignStatus) error {
	res := s.db.Model(&models.Campaign{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperrors.NewPersistence("campaign status update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("campaign", id)
	}
	return nil
}

// GetContact loads a contact by id.
func (s *Store) GetContact(id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("contact", id)
		}
		return nil, apperrors.NewPersistence("contact lookup", err)
	}
	return &contact, nil
}

// GetTemplate loads a template by id.
func (s *Store) GetTemplate(id uint) (*models.Template, error) {
	var tmpl models.Template
	if err := s.db.First(&tmpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("template", id)
		}
		return nil, apperrors.NewPersistence("template lookup", err)
	}
	return &tmpl, nil
}

// PrimaryTemplate returns the campaign's primary template, or NotFound when
// the campaign has none.
func (s *Store) PrimaryTemplate(campaignID uint) (*models.Template, error) {
	var tmpl models.Template
	err := s.db.Where("campaign_id = ? AND is_primary = ?", campaignID, true).
		First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("primary template for campaign", campaignID)
		}
		return nil, apperrors.NewPersistence("primary template lookup", err)
	}
	return &tmpl, nil
}

// CreateTemplate validates and persists a new template. New templates are
// never primary; promotion is a separate, atomic operation.
func (s *Store) CreateTemplate(tmpl *models.Template) error {
	if tmpl.SubjectTemplate == "" || tmpl.BodyTemplate == "" {
		return apperrors.NewValidation("template subject and body are required")
	}
	tmpl.IsPrimary = false
	if err := s.db.Create(tmpl).Error; err != nil {
		return apperrors.NewPersistence("template create", err)
	}
	return nil
}

// PromotePrimaryTemplate makes the given template the campaign's primary
// one, demoting all siblings in the same transaction so that at most one
// primary exists at any committed instant.
func (s *Store) PromotePrimaryTemplate(campaignID, templateID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var tmpl models.Template
		err := tx.Where("id = ? AND campaign_id = ?", templateID, campaignID).
			First(&tmpl).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("template", templateID)
			}
			return apperrors.NewPersistence("template lookup", err)
		}

		if err := tx.Model(&models.Template{}).
			Where("campaign_id = ? AND id <> ?", campaignID, templateID).
			Update("is_primary", false).Error; err != nil {
			return apperrors.NewPersistence("template demotion", err)
		}

		if err := tx.Model(&tmpl).Update("is_primary", true).Error; err != nil {
			return apperrors.NewPersistence("template promotion", err)
		}
		return nil
	})
}

// ActiveRules returns every active follow-up rule across campaigns.
func (s *Store) ActiveRules() ([]models.FollowUpRule, error) {
	var rules []models.FollowUpRule
	if err := s.db.Where("is_active = ?", true).Find(&rules).Error; err != nil {
		return nil, apperrors.NewPersistence("active rules lookup", err)
	}
	return rules, nil
}

// RulesForCampaign lists a campaign's follow-up rules.
func (s *Store) RulesForCampaign(campaignID uint) ([]models.FollowUpRule, error) {
	var rules []models.FollowUpRule
	if err := s.db.Where("campaign_id = ?", campaignID).Find(&rules).Error; err != nil {
		return nil, apperrors.NewPersistence("rules lookup", err)
	}
	return rules, nil
}

// CreateFollowUpRule validates and persists a follow-up rule. Malformed
// rules are rejected before persistence.
func (s *Store) CreateFollowUpRule(rule *models.FollowUpRule) error {
	if err := utils.ValidateStruct(rule); err != nil {
		return err
	}
	if !rule.Condition.Valid() {
		return apperrors.NewValidation("unknown follow-up condition " + string(rule.Condition))
	}
	if _, err := s.GetTemplate(rule.OriginalTemplateID); err != nil {
		return err
	}
	if _, err := s.GetTemplate(rule.FollowUpTemplateID); err != nil {
		return err
	}
	if err := s.db.Create(rule).Error; err != nil {
		return apperrors.NewPersistence("rule create", err)
	}
	return nil
}

// DeactivateRule flips a rule inactive; used by housekeeping when a rule
// references a template that no longer exists.
func (s *Store) DeactivateRule(ruleID uint) error {
	err := s.db.Model(&models.FollowUpRule{}).
		Where("id = ?", ruleID).
		Update("is_active", false).Error
	if err != nil {
		return apperrors.NewPersistence("rule deactivation", err)
	}
	return nil
}
