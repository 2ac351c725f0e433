package handlers

import (
	"gentrack/internal/app"
	logController "gentrack/internal/controllers/logs"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"
	"gentrack/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LogHandler struct {
	Handler
	logController logController.LogControllerInterface
}

func NewLogHandler(app app.App, router fiber.Router) *LogHandler {
	log := logger.New("handlers").File("log_handler")
	return &LogHandler{
		logController: app.LogController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *LogHandler) Register() {
	logs := h.router.Group("/logs", h.middleware.RequireAuth())

	logs.Get("/", h.query)
	logs.Get("/filter-options", h.filterOptions)

	admin := logs.Group("/", h.middleware.RequireAdmin())
	admin.Post("/", h.create)
	admin.Put("/:id", h.update)
	admin.Delete("/:id", h.remove)
}

func (h *LogHandler) query(c *fiber.Ctx) error {
	req := logController.QueryRequest{
		GensetID: queryUUID(c, "gensetId"),
		VenueID:  queryUUID(c, "venueId"),
		UserID:   queryUUID(c, "userId"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 50),
	}

	if action := c.Query("action"); action != "" {
		a := models.LogAction(action)
		req.Action = &a
	}

	result, err := h.logController.Query(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

func (h *LogHandler) filterOptions(c *fiber.Ctx) error {
	options, err := h.logController.FilterOptions(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(options)
}

func (h *LogHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req logController.ManualLogRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entry, err := h.logController.CreateManual(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"log": entry})
}

func (h *LogHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req logController.ManualLogRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse update request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entry, err := h.logController.Edit(c.UserContext(), middleware.GetUser(c), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"log": entry})
}

func (h *LogHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.logController.Delete(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Log entry deleted"})
}

// queryUUID reads an optional UUID query parameter, ignoring malformed
// values rather than failing the whole request.
func queryUUID(c *fiber.Ctx, key string) *uuid.UUID {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
