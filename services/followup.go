package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"reachly/apperrors"
	"reachly/models"
	"reachly/utils"
)

// FollowUpStore is the slice of persistence the rule engine needs.
type FollowUpStore interface {
	ActiveRules() ([]models.FollowUpRule, error)
	FollowUpCandidates(rule models.FollowUpRule, now time.Time) ([]models.SentMessage, error)
	HasFollowUpBeenSent(originalID, ruleID uint) (bool, error)
	GetContact(id uint) (*models.Contact, error)
	GetTemplate(id uint) (*models.Template, error)
	CreateDraft(msg *models.SentMessage) error
}

// FollowUpEngine evaluates active follow-up rules against the ledger on
// each scheduled tick and stages draft rows. It never sends anything
// itself; the dispatch worker picks drafts up on its own schedule, so
// follow-up creation and delivery have independent failure domains.
type FollowUpEngine struct {
	store FollowUpStore
	log   *logrus.Entry

	// Now is swapped in tests.
	Now func() time.Time
}

func NewFollowUpEngine(store FollowUpStore, logger *logrus.Logger) *FollowUpEngine {
	return &FollowUpEngine{
		store: store,
		log:   logger.WithField("component", "followup"),
		Now:   time.Now,
	}
}

// ProcessDueFollowUps runs one evaluation tick. Each created draft carries
// follows_up_on_id and triggered_by_rule_id, so re-running with no state
// change creates nothing. A misconfigured rule is logged and skipped, never
// retried differently; only infrastructure failure aborts the tick.
func (e *FollowUpEngine) ProcessDueFollowUps() (processedRules, createdDrafts int, err error) {
	now := e.Now()

	rules, err := e.store.ActiveRules()
	if err != nil {
		return 0, 0, err
	}
	if len(rules) == 0 {
		return 0, 0, nil
	}

	for _, rule := range rules {
		processedRules++

		if rule.Delay <= 0 || !rule.Condition.Valid() {
			e.log.WithFields(logrus.Fields{
				"rule_id":   rule.ID,
				"delay":     rule.Delay,
				"condition": rule.Condition,
			}).Warn("skipping misconfigured follow-up rule")
			continue
		}

		candidates, err := e.store.FollowUpCandidates(rule, now)
		if err != nil {
			if apperrors.IsConfiguration(err) {
				e.log.WithField("rule_id", rule.ID).WithError(err).Warn("skipping rule")
				continue
			}
			return processedRules, createdDrafts, err
		}

		for i := range candidates {
			created, err := e.stageFollowUp(rule, &candidates[i])
			if err != nil {
				return processedRules, createdDrafts, err
			}
			if created {
				createdDrafts++
			}
		}
	}

	e.log.WithFields(logrus.Fields{
		"rules":  processedRules,
		"drafts": createdDrafts,
	}).Info("follow-up evaluation complete")
	return processedRules, createdDrafts, nil
}

// stageFollowUp renders and stages one draft for (original, rule), unless
// one already exists. The candidate query excludes followed-up originals
// already; the re-check here keeps the at-most-one guarantee when two
// sources race between query and create.
func (e *FollowUpEngine) stageFollowUp(rule models.FollowUpRule, original *models.SentMessage) (bool, error) {
	exists, err := e.store.HasFollowUpBeenSent(original.ID, rule.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	contact, err := e.store.GetContact(original.ContactID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			e.log.WithField("original_id", original.ID).Warn("contact gone, skipping follow-up")
			return false, nil
		}
		return false, err
	}
	if contact.Unsubscribed {
		return false, nil
	}

	tmpl, err := e.store.GetTemplate(rule.FollowUpTemplateID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			e.log.WithField("rule_id", rule.ID).Warn("follow-up template gone, skipping")
			return false, nil
		}
		return false, err
	}

	ctx := utils.ContactContext(contact)
	draft := &models.SentMessage{
		CampaignID:        rule.CampaignID,
		ContactID:         contact.ID,
		TemplateID:        utils.Pointer(rule.FollowUpTemplateID),
		Subject:           utils.Personalize(tmpl.SubjectTemplate, ctx),
		Body:              utils.Personalize(tmpl.BodyTemplate, ctx),
		Status:            models.MessageStatusDraft,
		TrackingToken:     utils.GenerateTrackingToken(),
		FollowsUpOnID:     utils.Pointer(original.ID),
		TriggeredByRuleID: utils.Pointer(rule.ID),
	}

	if err := e.store.CreateDraft(draft); err != nil {
		return false, err
	}

	e.log.WithFields(logrus.Fields{
		"rule_id":     rule.ID,
		"original_id": original.ID,
		"contact_id":  contact.ID,
	}).Info("staged follow-up draft")
	return true, nil
}
