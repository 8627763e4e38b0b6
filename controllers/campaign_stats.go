package controllers

import (
	"github.com/gofiber/fiber/v2"

	"reachly/utils"
)

// GetCampaignStats returns the campaign's ledger summary: how many messages
// sit in each status, plus open and click totals.
func (cc *CampaignController) GetCampaignStats(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	if _, err := cc.Store.GetCampaign(campaignID); err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to load campaign", err)
	}

	stats, err := cc.Store.CampaignStats(campaignID)
	if err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to load campaign stats", err)
	}
	return c.JSON(utils.SuccessResponse(stats))
}
