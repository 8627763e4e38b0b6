package services

import (
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"reachly/apperrors"
	"reachly/models"
	"reachly/utils"
)

// DispatchStore is the slice of persistence the dispatch worker needs.
type DispatchStore interface {
	CampaignStore
	PrimaryTemplate(campaignID uint) (*models.Template, error)
	InitialSendTargets(campaignID uint) ([]models.Contact, error)
	PendingDrafts(limit int) ([]models.SentMessage, error)
	GetContact(id uint) (*models.Contact, error)
	SaveMessages(msgs []*models.SentMessage) error
}

// DispatchConfig tunes a dispatch run. PauseEvery/PauseFor implement the
// advisory pacing pause after every N sends; zero disables it.
// MessageIDDomain is the domain part of generated Message-ID headers,
// normally the sender address's domain.
type DispatchConfig struct {
	BaseURL         string
	MessageIDDomain string
	PauseEvery      int
	PauseFor        time.Duration
}

// RunResult is what the caller of a dispatch run gets back: the two
// counters always sum to the number of targets actually attempted, and
// Errors aggregates the per-recipient failures.
type RunResult struct {
	Successful int
	Failed     int
	Errors     *multierror.Error
}

// Attempted returns the number of targets the run attempted.
func (r *RunResult) Attempted() int {
	return r.Successful + r.Failed
}

// Dispatcher drives one batch of sends (initial or queued drafts) through
// the transport and writes outcomes to the ledger. Targets are processed
// sequentially; a per-recipient failure is recorded and the run continues,
// only infrastructure failure aborts the batch.
type Dispatcher struct {
	store     DispatchStore
	transport utils.Transport
	lifecycle *Lifecycle
	cfg       DispatchConfig
	log       *logrus.Entry

	// now is swapped in tests
	now func() time.Time
}

func NewDispatcher(store DispatchStore, transport utils.Transport, lifecycle *Lifecycle, cfg DispatchConfig, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		transport: transport,
		lifecycle: lifecycle,
		cfg:       cfg,
		log:       logger.WithField("component", "dispatch"),
		now:       time.Now,
	}
}

// RunCampaign performs the initial send for a campaign: resolves eligible
// contacts, stages a ledger row per contact before its send attempt, sends,
// and commits all staged rows as one batch. Campaign status transitions
// commit independently around the batch.
func (d *Dispatcher) RunCampaign(campaignID uint) (*RunResult, error) {
	result := &RunResult{}

	campaign, sendable, err := d.lifecycle.BeginRun(campaignID)
	if err != nil {
		return result, err
	}
	if !sendable {
		return result, nil
	}

	tmpl, err := d.store.PrimaryTemplate(campaignID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			if abortErr := d.lifecycle.Abort(campaignID, models.CampaignStatusErrorNoTemplate, "no primary template"); abortErr != nil {
				return result, abortErr
			}
			return result, apperrors.NewConfiguration(
				fmt.Sprintf("campaign %d has no primary template", campaignID))
		}
		return result, err
	}

	targets, err := d.store.InitialSendTargets(campaignID)
	if err != nil {
		return result, err
	}
	if len(targets) == 0 {
		d.log.WithField("campaign_id", campaignID).Info("no eligible contacts")
		return result, d.lifecycle.Finalize(campaignID, 0, 0)
	}

	d.log.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"campaign":    campaign.Name,
		"targets":     len(targets),
	}).Info("starting initial send run")

	staged := make([]*models.SentMessage, 0, len(targets))
	for i := range targets {
		contact := &targets[i]
		msg := d.stageInitialMessage(campaignID, contact, tmpl)
		d.sendOne(msg, contact.Email, result)
		staged = append(staged, msg)
		d.pace(len(staged), len(targets))
	}

	// One commit for the whole batch. If this fails nothing from the run
	// persists and the campaign stays visibly "sending" for the operator.
	if err := d.store.SaveMessages(staged); err != nil {
		d.log.WithField("campaign_id", campaignID).WithError(err).Error("batch commit failed")
		return &RunResult{}, err
	}

	if err := d.lifecycle.Finalize(campaignID, result.Successful, result.Failed); err != nil {
		return result, err
	}
	return result, nil
}

// RunDrafts sends queued follow-up drafts. Drafts arrive fully rendered
// from the rule engine; dispatch injects the beacon, sends, and commits the
// batch of row updates as one unit. Campaign status is untouched here.
func (d *Dispatcher) RunDrafts(limit int) (*RunResult, error) {
	result := &RunResult{}

	drafts, err := d.store.PendingDrafts(limit)
	if err != nil {
		return result, err
	}
	if len(drafts) == 0 {
		return result, nil
	}

	d.log.WithField("drafts", len(drafts)).Info("dispatching queued drafts")

	staged := make([]*models.SentMessage, 0, len(drafts))
	for i := range drafts {
		msg := &drafts[i]

		contact, err := d.store.GetContact(msg.ContactID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				msg.MarkSendResult(false, "contact no longer exists", d.now())
				result.Failed++
				result.Errors = multierror.Append(result.Errors,
					fmt.Errorf("draft %d: contact %d missing", msg.ID, msg.ContactID))
				staged = append(staged, msg)
				continue
			}
			return &RunResult{}, err
		}
		if contact.Unsubscribed {
			msg.MarkSendResult(false, "contact unsubscribed", d.now())
			result.Failed++
			staged = append(staged, msg)
			continue
		}

		if msg.ProviderMessageID == "" {
			msg.ProviderMessageID = utils.MessageID(msg.TrackingToken, d.cfg.MessageIDDomain)
		}
		msg.Body = utils.InjectTrackingPixel(msg.Body, d.cfg.BaseURL, msg.TrackingToken)
		d.sendOne(msg, contact.Email, result)
		staged = append(staged, msg)
		d.pace(len(staged), len(drafts))
	}

	if err := d.store.SaveMessages(staged); err != nil {
		d.log.WithError(err).Error("draft batch commit failed")
		return &RunResult{}, err
	}
	return result, nil
}

// stageInitialMessage builds the ledger row for an initial send. The
// tracking token is assigned here, before any send attempt that could
// generate engagement callbacks.
func (d *Dispatcher) stageInitialMessage(campaignID uint, contact *models.Contact, tmpl *models.Template) *models.SentMessage {
	ctx := utils.ContactContext(contact)
	token := utils.GenerateTrackingToken()

	body := utils.Personalize(tmpl.BodyTemplate, ctx)
	body = utils.InjectTrackingPixel(body, d.cfg.BaseURL, token)

	return &models.SentMessage{
		CampaignID:        campaignID,
		ContactID:         contact.ID,
		TemplateID:        utils.Pointer(tmpl.ID),
		Subject:           utils.Personalize(tmpl.SubjectTemplate, ctx),
		Body:              body,
		Status:            models.MessageStatusSending,
		TrackingToken:     token,
		ProviderMessageID: utils.MessageID(token, d.cfg.MessageIDDomain),
	}
}

// sendOne pushes a staged message through the transport and records the
// outcome on the row. Failures never abort the run.
func (d *Dispatcher) sendOne(msg *models.SentMessage, to string, result *RunResult) {
	if err := checkmail.ValidateFormat(to); err != nil {
		msg.MarkSendResult(false, "invalid email address: "+err.Error(), d.now())
		result.Failed++
		result.Errors = multierror.Append(result.Errors,
			fmt.Errorf("contact %d: invalid address %q", msg.ContactID, to))
		return
	}

	ok, detail := d.transport.Send(to, msg.Subject, msg.Body, msg.ProviderMessageID)
	msg.MarkSendResult(ok, detail, d.now())
	if ok {
		result.Successful++
		return
	}
	result.Failed++
	result.Errors = multierror.Append(result.Errors,
		fmt.Errorf("contact %d: %s", msg.ContactID, detail))
	d.log.WithFields(logrus.Fields{
		"contact_id": msg.ContactID,
		"reason":     detail,
	}).Warn("send failed")
}

// pace sleeps after every PauseEvery sends. Advisory throughput pacing, not
// a correctness requirement.
func (d *Dispatcher) pace(done, total int) {
	if d.cfg.PauseEvery <= 0 || d.cfg.PauseFor <= 0 {
		return
	}
	if done < total && done%d.cfg.PauseEvery == 0 {
		time.Sleep(d.cfg.PauseFor)
	}
}
