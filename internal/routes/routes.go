package routes

import (
	"github.com/gofiber/fiber/v2"

	"affiliate-tracking-service/internal/controller"
)

// Register attaches all HTTP routes to the Fiber app.
func Register(app *fiber.App, clickController controller.ClickController, postbackController controller.PostbackController) {
	app.Get("/click/:offer_id", clickController.Redirect)

	app.Post("/postback", postbackController.Ingest)
	app.Get("/postback", postbackController.Ingest)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
