package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"reachly/models"
	"reachly/services"
	"reachly/store"
	"reachly/utils"
)

type TemplateController struct {
	Store     *store.Store
	Generator services.TemplateGenerator
	Logger    *logrus.Logger
}

func NewTemplateController(st *store.Store, generator services.TemplateGenerator, logger *logrus.Logger) *TemplateController {
	return &TemplateController{
		Store:     st,
		Generator: generator,
		Logger:    logger,
	}
}

type generateTemplateRequest struct {
	Name            string `json:"name"`
	Instruction     string `json:"instruction"`
	SampleContactID uint   `json:"sample_contact_id"`
}

// GenerateTemplate authors a new template from a free-text instruction and
// stores it as a non-primary candidate for the campaign. Promotion to
// primary is a separate call.
func (tc *TemplateController) GenerateTemplate(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	if campaignID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}
	if _, err := tc.Store.GetCampaign(campaignID); err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to load campaign", err)
	}

	var req generateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Instruction == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "instruction is required", nil)
	}

	var sample *models.Contact
	if req.SampleContactID != 0 {
		contact, err := tc.Store.GetContact(req.SampleContactID)
		if err != nil {
			return utils.ErrorResponse(c, statusForError(err), "Failed to load sample contact", err)
		}
		sample = contact
	}

	subject, body, err := tc.Generator.GenerateTemplate(c.Context(), req.Instruction, sample)
	if err != nil {
		tc.Logger.WithField("campaign_id", campaignID).WithError(err).Error("template generation failed")
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Template generation failed", err)
	}

	name := req.Name
	if name == "" {
		name = subject
	}
	tmpl := &models.Template{
		CampaignID:      campaignID,
		Name:            name,
		SubjectTemplate: subject,
		BodyTemplate:    body,
		UserPrompt:      req.Instruction,
	}
	if err := tc.Store.CreateTemplate(tmpl); err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to save template", err)
	}

	tc.Logger.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"template_id": tmpl.ID,
	}).Info("generated template saved")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(tmpl))
}

// PromoteTemplate makes the given template the campaign's primary one.
func (tc *TemplateController) PromoteTemplate(c *fiber.Ctx) error {
	campaignID := utils.ParseUint(c.Params("id"))
	templateID := utils.ParseUint(c.Params("templateID"))
	if campaignID == 0 || templateID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign or template ID", nil)
	}

	if err := tc.Store.PromotePrimaryTemplate(campaignID, templateID); err != nil {
		return utils.ErrorResponse(c, statusForError(err), "Failed to promote template", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"campaign_id": campaignID,
		"template_id": templateID,
		"is_primary":  true,
	}))
}
