package handlers

import (
	"gentrack/internal/app"
	gensetController "gentrack/internal/controllers/gensets"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type GensetHandler struct {
	Handler
	gensetController gensetController.GensetControllerInterface
}

func NewGensetHandler(app app.App, router fiber.Router) *GensetHandler {
	log := logger.New("handlers").File("genset_handler")
	return &GensetHandler{
		gensetController: app.GensetController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *GensetHandler) Register() {
	gensets := h.router.Group("/gensets", h.middleware.RequireAuth())

	gensets.Get("/", h.list)
	gensets.Get("/:id", h.get)
	gensets.Post("/:id/toggle", h.toggle)

	admin := gensets.Group("/", h.middleware.RequireAdmin())
	admin.Post("/", h.create)
	admin.Put("/:id", h.update)
	admin.Delete("/:id", h.remove)
}

func (h *GensetHandler) list(c *fiber.Ctx) error {
	gensets, err := h.gensetController.List(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"gensets": gensets})
}

func (h *GensetHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	genset, err := h.gensetController.Get(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"genset": genset})
}

// toggle flips power state. The response carries the transition so the
// client can render it without refetching.
func (h *GensetHandler) toggle(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.gensetController.Toggle(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

func (h *GensetHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req gensetController.CreateGensetRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	genset, err := h.gensetController.Create(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"genset": genset})
}

func (h *GensetHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req gensetController.UpdateGensetRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse update request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	genset, err := h.gensetController.Update(c.UserContext(), middleware.GetUser(c), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"genset": genset})
}

func (h *GensetHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.gensetController.Delete(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Generator deleted"})
}
