package routes

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"reachly/controllers"
	"reachly/services"
	"reachly/store"
)

// SetupRoutes wires the HTTP surface: campaign dispatch triggers, template
// authoring, follow-up rules, and the public tracking endpoints.
func SetupRoutes(app *fiber.App, st *store.Store, dispatcher *services.Dispatcher, generator services.TemplateGenerator, logger *logrus.Logger) {
	campaignCtrl := controllers.NewCampaignController(st, dispatcher, logger)
	templateCtrl := controllers.NewTemplateController(st, generator, logger)
	followUpCtrl := controllers.NewFollowUpController(st, logger)
	trackingCtrl := controllers.NewTrackingController(st, logger)

	// Public tracking endpoints. No auth, no request logging of the open
	// beacon beyond what the controller records itself.
	app.Get("/track/open/:token", trackingCtrl.HandleOpen)
	app.Post("/webhooks/email/events", trackingCtrl.HandleWebhook)

	api := app.Group("/api/v1", fiberlogger.New())

	campaigns := api.Group("/campaigns")
	campaigns.Get("/:id", campaignCtrl.GetCampaign)
	campaigns.Get("/:id/stats", campaignCtrl.GetCampaignStats)
	campaigns.Post("/:id/send", campaignCtrl.SendCampaign)

	campaigns.Post("/:id/templates/generate", templateCtrl.GenerateTemplate)
	campaigns.Post("/:id/templates/:templateID/promote", templateCtrl.PromoteTemplate)

	campaigns.Post("/:id/follow-up-rules", followUpCtrl.CreateRule)
	campaigns.Get("/:id/follow-up-rules", followUpCtrl.ListRules)
}
