package services

import (
	"github.com/sirupsen/logrus"

	"reachly/models"
)

// HousekeepingStore is the slice of persistence the housekeeper needs.
type HousekeepingStore interface {
	DanglingRules() ([]models.FollowUpRule, error)
	DeactivateRule(ruleID uint) error
	LedgerStats() (map[models.MessageStatus]int64, error)
}

// Housekeeper runs the daily maintenance pass: it deactivates follow-up
// rules whose templates were deleted out from under them (a configuration
// error, not a crash) and logs ledger stats. Ledger rows themselves are
// never deleted outside a campaign cascade.
type Housekeeper struct {
	store HousekeepingStore
	log   *logrus.Entry
}

func NewHousekeeper(store HousekeepingStore, logger *logrus.Logger) *Housekeeper {
	return &Housekeeper{
		store: store,
		log:   logger.WithField("component", "housekeeping"),
	}
}

// Run executes one housekeeping pass.
func (h *Housekeeper) Run() error {
	dangling, err := h.store.DanglingRules()
	if err != nil {
		return err
	}
	for _, rule := range dangling {
		h.log.WithFields(logrus.Fields{
			"rule_id":              rule.ID,
			"original_template_id": rule.OriginalTemplateID,
			"follow_up_template":   rule.FollowUpTemplateID,
		}).Warn("deactivating follow-up rule with missing template")
		if err := h.store.DeactivateRule(rule.ID); err != nil {
			return err
		}
	}

	stats, err := h.store.LedgerStats()
	if err != nil {
		return err
	}
	fields := logrus.Fields{}
	for status, n := range stats {
		fields[string(status)] = n
	}
	h.log.WithFields(fields).Info("ledger stats")
	return nil
}
