package handlers

import (
	"gentrack/internal/app"
	statsController "gentrack/internal/controllers/stats"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	Handler
	statsController statsController.StatsControllerInterface
}

func NewStatsHandler(app app.App, router fiber.Router) *StatsHandler {
	log := logger.New("handlers").File("stats_handler")
	return &StatsHandler{
		statsController: app.StatsController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *StatsHandler) Register() {
	stats := h.router.Group("/stats", h.middleware.RequireAuth())
	stats.Get("/dashboard", h.dashboard)
}

func (h *StatsHandler) dashboard(c *fiber.Ctx) error {
	stats, err := h.statsController.Dashboard(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}
