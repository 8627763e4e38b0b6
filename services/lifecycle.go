package services

import (
	"github.com/sirupsen/logrus"

	"reachly/models"
)

// CampaignStore is the slice of persistence the lifecycle manager needs.
type CampaignStore interface {
	GetCampaign(id uint) (*models.Campaign, error)
	UpdateCampaignStatus(id uint, status models.CampaignStatus) error
}

// Lifecycle owns the campaign status state machine. Every transition here
// commits immediately and independently of any dispatch batch, so a crash
// mid-run leaves the campaign visibly "sending" rather than silently stuck.
type Lifecycle struct {
	store CampaignStore
	log   *logrus.Entry
}

func NewLifecycle(store CampaignStore, logger *logrus.Logger) *Lifecycle {
	return &Lifecycle{
		store: store,
		log:   logger.WithField("component", "lifecycle"),
	}
}

// BeginRun transitions a sendable campaign to "sending" and commits before
// any sends occur. Returns the campaign and whether a run may proceed; a
// campaign outside {active, sending, pending} is a no-op, not an error.
func (l *Lifecycle) BeginRun(campaignID uint) (*models.Campaign, bool, error) {
	campaign, err := l.store.GetCampaign(campaignID)
	if err != nil {
		return nil, false, err
	}

	if !campaign.Status.Sendable() {
		l.log.WithFields(logrus.Fields{
			"campaign_id": campaignID,
			"status":      campaign.Status,
		}).Info("campaign not in a sendable state, skipping run")
		return campaign, false, nil
	}

	if err := l.store.UpdateCampaignStatus(campaignID, models.CampaignStatusSending); err != nil {
		return nil, false, err
	}
	campaign.Status = models.CampaignStatusSending
	return campaign, true, nil
}

// Finalize selects the terminal status from the run's counters and commits
// it. No eligible work at all still counts as a completed run.
func (l *Lifecycle) Finalize(campaignID uint, successCount, failCount int) error {
	var status models.CampaignStatus
	switch {
	case failCount > 0 && successCount > 0:
		status = models.CampaignStatusActiveWithErrors
	case failCount > 0:
		status = models.CampaignStatusFailed
	default:
		status = models.CampaignStatusCompleted
	}

	l.log.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"successful":  successCount,
		"failed":      failCount,
		"status":      status,
	}).Info("finalizing campaign run")

	return l.store.UpdateCampaignStatus(campaignID, status)
}

// Abort moves the campaign to an explicit error status before any send has
// happened, e.g. when no primary template exists. Operator-recoverable: a
// fixed campaign can be re-triggered, there is no automatic retry.
func (l *Lifecycle) Abort(campaignID uint, status models.CampaignStatus, reason string) error {
	l.log.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"status":      status,
		"reason":      reason,
	}).Warn("aborting campaign run")
	return l.store.UpdateCampaignStatus(campaignID, status)
}
