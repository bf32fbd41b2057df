package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pantry/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers translate HTTP to service calls and hold no business logic.
func RegisterRoutes(app *fiber.App, store Pinger, svc service.ItemService, loc *time.Location) {
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	app.Get("/categories", ListCategories())

	app.Get("/items", ListItems(svc))
	app.Post("/items", CreateItem(svc, loc))
	app.Post("/items/import", ImportItems(svc))
	app.Get("/items/:id", GetItem(svc))
	app.Put("/items/:id", UpdateItem(svc, loc))
	app.Post("/items/:id/consume", ConsumeItem(svc))
	app.Delete("/items/:id", DeleteItem(svc))

	app.Get("/dashboard", Dashboard(svc))
	app.Post("/sessions", StartSession(svc))
}
