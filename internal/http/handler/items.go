package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"pantry/internal/model"
	"pantry/internal/service"
)

const dateLayout = "2006-01-02"

// Pinger is a dependency whose reachability decides /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// itemFields are the fields a client sets on both create and update.
type itemFields struct {
	Name       string `json:"name" validate:"required,max=200"`
	Category   string `json:"category" validate:"required,oneof=Dairy Vegetables Fruits Meat Pantry Beverages Snacks Other"`
	Quantity   int    `json:"quantity" validate:"required,min=1,max=10000"`
	Unit       string `json:"unit" validate:"max=32"`
	Notes      string `json:"notes" validate:"max=1000"`
	ExpiryDate string `json:"expiry_date" validate:"required,datetime=2006-01-02"`
}

// createRequest rejects purchase_date and consumed: a new item is bought now
// and not yet consumed.
type createRequest struct {
	itemFields
	PurchaseDate string `json:"purchase_date" validate:"isdefault"`
	Consumed     bool   `json:"consumed" validate:"isdefault"`
}

type updateRequest struct {
	itemFields
	PurchaseDate string `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	Consumed     bool   `json:"consumed"`
}

type importRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type itemsResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

// HealthCheck reports whether the item store is reachable.
func HealthCheck(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

func ListCategories() fiber.Handler {
	type category struct {
		Name  model.Category `json:"name"`
		Color string         `json:"color"`
	}
	out := make([]category, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, category{Name: c, Color: c.Color()})
	}
	return func(c *fiber.Ctx) error {
		return c.JSON(out)
	}
}

// ListItems returns active items, filtered by ?category= and ordered by ?sort=.
func ListItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := svc.List(c.UserContext(), service.ListQuery{
			Category: c.Query("category"),
			Sort:     c.Query("sort"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(itemsResponse{Data: views, Total: len(views)})
	}
}

func GetItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		it, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(it)
	}
}

// CreateItem adds a manually entered item. Dates are calendar days in loc.
func CreateItem(svc service.ItemService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
		}
		exp, _ := time.ParseInLocation(dateLayout, req.ExpiryDate, loc)

		it, err := svc.Create(c.UserContext(), service.ItemInput{
			Name:       req.Name,
			Category:   model.Category(req.Category),
			Quantity:   req.Quantity,
			Unit:       req.Unit,
			Notes:      req.Notes,
			ExpiryDate: exp,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(it)
	}
}

// ImportItems extracts items from free text and adds them.
func ImportItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req importRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
		}
		added, err := svc.Import(c.UserContext(), req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(itemsResponse{Data: added, Total: len(added)})
	}
}

// UpdateItem replaces an item wholesale. created_at is never changed and an
// omitted purchase_date keeps the stored one.
func UpdateItem(svc service.ItemService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
		}

		ctx := c.UserContext()
		cur, err := svc.Get(ctx, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		next := *cur
		next.Name = req.Name
		next.Category = model.Category(req.Category)
		next.Quantity = req.Quantity
		next.Unit = req.Unit
		next.Notes = req.Notes
		next.Consumed = req.Consumed
		next.ExpiryDate, _ = time.ParseInLocation(dateLayout, req.ExpiryDate, loc)
		if req.PurchaseDate != "" {
			next.PurchaseDate, _ = time.ParseInLocation(dateLayout, req.PurchaseDate, loc)
		}

		if _, err := svc.Update(ctx, next); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(next)
	}
}

// ConsumeItem marks an item consumed. The record stays in the collection.
func ConsumeItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		ctx := c.UserContext()
		it, err := svc.Get(ctx, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if _, err := svc.Consume(ctx, *it); err != nil {
			return writeServiceError(c, err)
		}
		it.Consumed = true
		return c.JSON(it)
	}
}

func DeleteItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		ctx := c.UserContext()
		if _, err := svc.Get(ctx, id); err != nil {
			return writeServiceError(c, err)
		}
		if _, err := svc.Delete(ctx, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Dashboard returns the derived stats and chart data.
func Dashboard(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Dashboard(c.UserContext()))
	}
}

// StartSession is called by a client when it loads. It may trigger one
// expiry notification.
func StartSession(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.StartSession(c.UserContext()))
	}
}

func itemID(c *fiber.Ctx) (string, bool) {
	// Params points into fasthttp's reused request buffer.
	id := utils.CopyString(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
