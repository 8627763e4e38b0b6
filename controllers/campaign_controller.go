package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachly/services"
	"reachly/store"
	"reachly/utils"
)

type CampaignController struct {
	Store      *store.Store
	Dispatcher *services.Dispatcher
	Logger     *logrus.Logger
}

func NewCampaignController(st *store.Store, dispatcher *services.Dispatcher, logger *logrus.Logger) *CampaignController {
	return &CampaignController{
		Store:      st,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// GetCampaign returns a campaign with its current lifecycle status.
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	campaign, err := cc.Store.GetCampaign(campaignID)
	if err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to load campaign", err)
	}
	return c.JSON(utils.SuccessResponse(campaign))
}

// SendCampaign triggers the initial dispatch run for a campaign. The run is
// synchronous; the response carries the outcome counters.
func (cc *CampaignController) SendCampaign(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	cc.Logger.WithField("campaign_id", campaignID).Info("send triggered via API")

	result, err := cc.Dispatcher.RunCampaign(campaignID)
	if err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Campaign send failed", err)
	}

	payload := fiber.Map{
		"campaign_id": campaignID,
		"attempted":   result.Attempted(),
		"successful":  result.Successful,
		"failed":      result.Failed,
	}
	if result.Errors != nil {
		details := make([]string, 0, len(result.Errors.Errors))
		for _, e := range result.Errors.Errors {
			details = append(details, e.Error())
		}
		payload["send_errors"] = details
	}
	return c.JSON(utils.SuccessResponse(payload))
}
