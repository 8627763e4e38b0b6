package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"reachly/apperrors"
	"reachly/models"
	"reachly/utils"
)

// CreateDraft stages a ledger row with status=draft and a freshly assigned
// tracking token. No send side effect.
func (s *Store) CreateDraft(msg *models.SentMessage) error {
	if msg.Status == "" {
		msg.Status = models.MessageStatusDraft
	}
	if msg.TrackingToken == "" {
		msg.TrackingToken = utils.GenerateTrackingToken()
	}
	if err := s.db.Create(msg).Error; err != nil {
		return apperrors.NewPersistence("ledger draft create", err)
	}
	return nil
}

// SaveMessages commits a dispatch run's staged ledger rows as one unit:
// either every row persists or, on infrastructure failure, none do.
func (s *Store) SaveMessages(msgs []*models.SentMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, msg := range msgs {
			if err := tx.Save(msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewPersistence("ledger batch commit", err)
	}
	return nil
}

// RecordOpen folds an open-beacon hit into the ledger as an independent
// single-row transaction. Returns false when the token is unknown; the
// caller still serves the pixel either way.
func (s *Store) RecordOpen(token, sourceIP string, at time.Time) (bool, error) {
	var msg models.SentMessage
	err := s.db.Select("id").Where("tracking_token = ?", token).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.NewPersistence("open lookup", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return applyOpen(tx, msg.ID, at, sourceIP)
	})
	if err != nil {
		return false, apperrors.NewPersistence("open record", err)
	}
	return true, nil
}

// applyOpen writes one open hit with atomic, status-guarded updates so that
// concurrent engagement events never lose a counter increment or downgrade a
// stronger state. open_count always increments and last_opened_at always
// advances; opened_at and last_opened_ip are set once and never moved.
func applyOpen(tx *gorm.DB, id uint, at time.Time, sourceIP string) error {
	err := tx.Model(&models.SentMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"open_count":     gorm.Expr("open_count + 1"),
			"last_opened_at": at,
			"opened_at":      gorm.Expr("COALESCE(opened_at, ?)", at),
			"last_opened_ip": gorm.Expr("CASE WHEN last_opened_ip = '' THEN ? ELSE last_opened_ip END", sourceIP),
		}).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.SentMessage{}).
		Where("id = ? AND status NOT IN ?", id, models.OpenPreservedStatuses).
		Update("status", models.MessageStatusOpened).Error
}

// RecordProviderEvent folds a delivery-provider webhook event into the
// ledger. The identifier matches either the stamped Message-ID or our
// tracking token. Returns false for unknown identifiers or event types.
// Writes follow the same discipline as applyOpen: counters increment
// atomically, first-seen timestamps are set once, and status transitions
// are guarded so engagement never regresses while bounce and complaint
// states always win.
func (s *Store) RecordProviderEvent(identifier, eventType string, at time.Time, details string) (bool, error) {
	var msg models.SentMessage
	err := s.db.Select("id").
		Where("provider_message_id = ? OR tracking_token = ?", identifier, identifier).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.NewPersistence("provider event lookup", err)
	}

	applied := true
	err = s.db.Transaction(func(tx *gorm.DB) error {
		row := tx.Model(&models.SentMessage{})
		switch eventType {
		case "delivered":
			err := row.Where("id = ?", msg.ID).
				Update("delivered_at", gorm.Expr("COALESCE(delivered_at, ?)", at)).Error
			if err != nil {
				return err
			}
			// Delivery must not mask engagement already recorded.
			return tx.Model(&models.SentMessage{}).
				Where("id = ? AND status IN ?", msg.ID,
					[]models.MessageStatus{models.MessageStatusSending, models.MessageStatusSent}).
				Update("status", models.MessageStatusDelivered).Error
		case "open":
			return applyOpen(tx, msg.ID, at, "")
		case "click":
			err := row.Where("id = ?", msg.ID).
				Updates(map[string]interface{}{
					"click_count":     gorm.Expr("click_count + 1"),
					"last_clicked_at": at,
					"clicked_at":      gorm.Expr("COALESCE(clicked_at, ?)", at),
				}).Error
			if err != nil {
				return err
			}
			return tx.Model(&models.SentMessage{}).
				Where("id = ? AND status NOT IN ?", msg.ID, models.ClickPreservedStatuses).
				Update("status", models.MessageStatusClicked).Error
		case "reply":
			return row.Where("id = ? AND status NOT IN ?", msg.ID, models.ReplyPreservedStatuses).
				Update("status", models.MessageStatusReplied).Error
		case "bounce":
			return setTerminalStatus(tx, msg.ID, models.MessageStatusHardBounced, details)
		case "soft_bounce":
			return setTerminalStatus(tx, msg.ID, models.MessageStatusSoftBounced, details)
		case "complaint":
			return setTerminalStatus(tx, msg.ID, models.MessageStatusSpamComplaint, details)
		case "unsubscribe":
			return row.Where("id = ?", msg.ID).
				Update("status", models.MessageStatusUnsubscribed).Error
		default:
			applied = false
			return nil
		}
	})
	if err != nil {
		return false, apperrors.NewPersistence("provider event record", err)
	}
	return applied, nil
}

func setTerminalStatus(tx *gorm.DB, id uint, status models.MessageStatus, details string) error {
	fields := map[string]interface{}{"status": status}
	if details != "" {
		fields["status_reason"] = details
	}
	return tx.Model(&models.SentMessage{}).Where("id = ?", id).Updates(fields).Error
}

// HasFollowUpBeenSent reports whether a follow-up already exists for the
// (original message, rule) pair. This is the follow-up idempotency check.
func (s *Store) HasFollowUpBeenSent(originalID, ruleID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.SentMessage{}).
		Where("follows_up_on_id = ? AND triggered_by_rule_id = ?", originalID, ruleID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewPersistence("follow-up existence check", err)
	}
	return count > 0, nil
}

// PendingDrafts returns queued draft rows oldest-first, up to limit.
func (s *Store) PendingDrafts(limit int) ([]models.SentMessage, error) {
	var drafts []models.SentMessage
	err := s.db.Where("status = ?", models.MessageStatusDraft).
		Order("created_at ASC").
		Limit(limit).
		Find(&drafts).Error
	if err != nil {
		return nil, apperrors.NewPersistence("pending drafts lookup", err)
	}
	return drafts, nil
}

// CampaignLedgerStats summarizes one campaign's ledger.
type CampaignLedgerStats struct {
	ByStatus    map[models.MessageStatus]int64 `json:"by_status"`
	TotalOpens  int64                          `json:"total_opens"`
	TotalClicks int64                          `json:"total_clicks"`
}

// CampaignStats aggregates a campaign's ledger rows: per-status counts plus
// open and click totals.
func (s *Store) CampaignStats(campaignID uint) (*CampaignLedgerStats, error) {
	type statusRow struct {
		Status models.MessageStatus
		N      int64
	}
	var rows []statusRow
	err := s.db.Model(&models.SentMessage{}).
		Select("status, COUNT(*) AS n").
		Where("campaign_id = ?", campaignID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewPersistence("campaign stats", err)
	}

	stats := &CampaignLedgerStats{ByStatus: make(map[models.MessageStatus]int64, len(rows))}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.N
	}

	type totals struct {
		Opens  int64
		Clicks int64
	}
	var t totals
	err = s.db.Model(&models.SentMessage{}).
		Select("COALESCE(SUM(open_count), 0) AS opens, COALESCE(SUM(click_count), 0) AS clicks").
		Where("campaign_id = ?", campaignID).
		Scan(&t).Error
	if err != nil {
		return nil, apperrors.NewPersistence("campaign stats totals", err)
	}
	stats.TotalOpens = t.Opens
	stats.TotalClicks = t.Clicks
	return stats, nil
}

// LedgerStats is a housekeeping summary of ledger rows per status.
func (s *Store) LedgerStats() (map[models.MessageStatus]int64, error) {
	type row struct {
		Status models.MessageStatus
		N      int64
	}
	var rows []row
	err := s.db.Model(&models.SentMessage{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewPersistence("ledger stats", err)
	}
	stats := make(map[models.MessageStatus]int64, len(rows))
	for _, r := range rows {
		stats[r.Status] = r.N
	}
	return stats, nil
}

// DanglingRules finds active rules referencing templates that were deleted
// out from under them. That is a configuration error, not a crash; the
// caller deactivates them.
func (s *Store) DanglingRules() ([]models.FollowUpRule, error) {
	var rules []models.FollowUpRule
	err := s.db.
		Where("is_active = ?", true).
		Where(`original_template_id NOT IN (SELECT id FROM templates WHERE deleted_at IS NULL)
			OR follow_up_template_id NOT IN (SELECT id FROM templates WHERE deleted_at IS NULL)`).
		Find(&rules).Error
	if err != nil {
		return nil, apperrors.NewPersistence("dangling rules lookup", err)
	}
	return rules, nil
}
