package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachly/store"
	"reachly/utils"
)

type TrackingController struct {
	Store  *store.Store
	Logger *logrus.Logger
}

func NewTrackingController(st *store.Store, logger *logrus.Logger) *TrackingController {
	return &TrackingController{Store: st, Logger: logger}
}

// HandleOpen serves the open beacon. It always returns the pixel with 200,
// whatever happens on the ledger side, so a broken token never renders a
// broken image in the recipient's mail client.
func (tc *TrackingController) HandleOpen(c *fiber.Ctx) error {
	token := strings.TrimSuffix(c.Params("token"), ".png")

	if token != "" {
		recorded, err := tc.Store.RecordOpen(token, c.IP(), time.Now())
		if err != nil {
			tc.Logger.WithField("token", token).WithError(err).Error("failed to record open")
		} else if !recorded {
			tc.Logger.WithField("token", token).Debug("open beacon with unknown token")
		}
	}

	c.Set("Content-Type", "image/gif")
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")
	return c.Send(utils.TransparentPixel())
}

// providerEvent is one delivery-provider notification. Providers disagree on
// field names, so the common aliases are accepted: the message may be keyed
// by message_id, identifier or our tracking token, and the event type may
// arrive as "event" or "type".
type providerEvent struct {
	MessageID     string `json:"message_id"`
	Identifier    string `json:"identifier"`
	TrackingToken string `json:"tracking_token"`
	Event         string `json:"event"`
	Type          string `json:"type"`
	Timestamp     string `json:"timestamp"`
	Details       string `json:"details"`
}

func (e *providerEvent) identifier() string {
	if e.MessageID != "" {
		return e.MessageID
	}
	if e.Identifier != "" {
		return e.Identifier
	}
	return e.TrackingToken
}

func (e *providerEvent) eventType() string {
	if e.Event != "" {
		return e.Event
	}
	return e.Type
}

func (e *providerEvent) occurredAt() time.Time {
	if e.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			return t
		}
	}
	return time.Now()
}

// HandleWebhook ingests delivery-provider events. Accepts a single event
// object, a bare array, or {"events": [...]}. An unknown identifier or event
// type is counted in the error tally but never fails the batch; the response
// stays 200 so providers do not retry events we will never understand.
func (tc *TrackingController) HandleWebhook(c *fiber.Ctx) error {
	events, err := parseWebhookBody(c.Body())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Malformed webhook payload", err)
	}

	processed, errored := 0, 0
	for _, ev := range events {
		id := ev.identifier()
		eventType := ev.eventType()
		if id == "" || eventType == "" {
			errored++
			continue
		}

		applied, err := tc.Store.RecordProviderEvent(id, eventType, ev.occurredAt(), ev.Details)
		if err != nil {
			tc.Logger.WithFields(logrus.Fields{
				"identifier": id,
				"event":      eventType,
			}).WithError(err).Error("failed to record provider event")
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record events", err)
		}
		if applied {
			processed++
		} else {
			tc.Logger.WithFields(logrus.Fields{
				"identifier": id,
				"event":      eventType,
			}).Debug("webhook event did not match a ledger row")
			errored++
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"processed": processed,
		"errors":    errored,
	}))
}

func parseWebhookBody(body []byte) ([]providerEvent, error) {
	var wrapped struct {
		Events []providerEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Events) > 0 {
		return wrapped.Events, nil
	}

	var list []providerEvent
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var single providerEvent
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []providerEvent{single}, nil
}
