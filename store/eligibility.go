package store

import (
	"time"

	"reachly/apperrors"
	"reachly/models"
)

// InitialSendTargets computes the recipient set for an initial send: every
// campaign contact minus those who already hold an initial record in a
// successful terminal status, minus unsubscribed contacts. Unsubscribed is
// a hard exclusion with no exceptions.
func (s *Store) InitialSendTargets(campaignID uint) ([]models.Contact, error) {
	alreadySent := s.db.Model(&models.SentMessage{}).
		Select("contact_id").
		Where("campaign_id = ?", campaignID).
		Where("follows_up_on_id IS NULL").
		Where("status IN ?", models.SuccessfulTerminalStatuses)

	var contacts []models.Contact
	err := s.db.
		Where("campaign_id = ?", campaignID).
		Where("unsubscribed = ?", false).
		Where("id NOT IN (?)", alreadySent).
		Find(&contacts).Error
	if err != nil {
		return nil, apperrors.NewPersistence("initial send targets", err)
	}
	return contacts, nil
}

// FollowUpCandidates returns the initial sends eligible for a follow-up
// under the given rule: sent with the rule's original template, older than
// the rule's delay, contact still subscribed, status satisfying the rule's
// condition, and not already followed up for this specific rule. The
// existence check is part of the query, not an after-the-fact filter.
func (s *Store) FollowUpCandidates(rule models.FollowUpRule, now time.Time) ([]models.SentMessage, error) {
	statuses := rule.Condition.QualifyingStatuses()
	if len(statuses) == 0 {
		return nil, apperrors.NewConfiguration("unknown follow-up condition " + string(rule.Condition))
	}
	cutoff := now.Add(-rule.Delay)

	var candidates []models.SentMessage
	err := s.db.
		Joins("JOIN contacts ON contacts.id = sent_messages.contact_id").
		Where("sent_messages.campaign_id = ?", rule.CampaignID).
		Where("sent_messages.template_id = ?", rule.OriginalTemplateID).
		Where("sent_messages.follows_up_on_id IS NULL").
		Where("sent_messages.sent_at IS NOT NULL AND sent_messages.sent_at <= ?", cutoff).
		Where("sent_messages.status IN ?", statuses).
		Where("contacts.unsubscribed = ?", false).
		Where(`NOT EXISTS (
			SELECT 1 FROM sent_messages fu
			WHERE fu.follows_up_on_id = sent_messages.id
			AND fu.triggered_by_rule_id = ?
			AND fu.deleted_at IS NULL)`, rule.ID).
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.NewPersistence("follow-up candidates", err)
	}
	return candidates, nil
}
