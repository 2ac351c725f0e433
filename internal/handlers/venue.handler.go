package handlers

import (
	"gentrack/internal/app"
	venueController "gentrack/internal/controllers/venues"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type VenueHandler struct {
	Handler
	venueController venueController.VenueControllerInterface
}

func NewVenueHandler(app app.App, router fiber.Router) *VenueHandler {
	log := logger.New("handlers").File("venue_handler")
	return &VenueHandler{
		venueController: app.VenueController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *VenueHandler) Register() {
	venues := h.router.Group("/venues", h.middleware.RequireAuth())

	venues.Get("/", h.list)

	admin := venues.Group("/", h.middleware.RequireAdmin())
	admin.Post("/", h.create)
	admin.Put("/:id", h.update)
	admin.Delete("/:id", h.remove)
}

func (h *VenueHandler) list(c *fiber.Ctx) error {
	venues, err := h.venueController.List(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"venues": venues})
}

func (h *VenueHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req venueController.VenueRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	venue, err := h.venueController.Create(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"venue": venue})
}

func (h *VenueHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req venueController.VenueRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse update request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	venue, err := h.venueController.Update(c.UserContext(), middleware.GetUser(c), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"venue": venue})
}

// remove deactivates the venue and untags every generator on it. The
// response reports how many were untagged.
func (h *VenueHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.venueController.Delete(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}
