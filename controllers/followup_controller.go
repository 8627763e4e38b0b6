package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachly/models"
	"reachly/store"
	"reachly/utils"
)

type FollowUpController struct {
	Store  *store.Store
	Logger *logrus.Logger
}

func NewFollowUpController(st *store.Store, logger *logrus.Logger) *FollowUpController {
	return &FollowUpController{Store: st, Logger: logger}
}

type createRuleRequest struct {
	OriginalTemplateID uint   `json:"original_template_id"`
	FollowUpTemplateID uint   `json:"follow_up_template_id"`
	DelayHours         int    `json:"delay_hours"`
	Condition          string `json:"condition"`
}

// CreateRule registers a follow-up rule on a campaign. The rule engine picks
// it up on its next tick; nothing is sent from here.
func (fc *FollowUpController) CreateRule(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}
	if _, err := fc.Store.GetCampaign(campaignID); err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to load campaign", err)
	}

	var req createRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	rule := &models.FollowUpRule{
		CampaignID:         campaignID,
		OriginalTemplateID: req.OriginalTemplateID,
		FollowUpTemplateID: req.FollowUpTemplateID,
		Delay:              time.Duration(req.DelayHours) * time.Hour,
		Condition:          models.FollowUpCondition(req.Condition),
		IsActive:           true,
	}
	if err := fc.Store.CreateFollowUpRule(rule); err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to create rule", err)
	}

	fc.Logger.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"rule_id":     rule.ID,
		"condition":   rule.Condition,
	}).Info("follow-up rule created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(rule))
}

// ListRules returns a campaign's follow-up rules.
func (fc *FollowUpController) ListRules(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	rules, err := fc.Store.RulesForCampaign(campaignID)
	if err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to list rules", err)
	}
	return c.JSON(utils.SuccessResponse(rules))
}
