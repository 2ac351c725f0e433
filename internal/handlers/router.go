package handlers

import (
	"gentrack/internal/app"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewGensetHandler(*app, api).Register()
	NewVenueHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()
	NewLogHandler(*app, api).Register()
	NewStatsHandler(*app, api).Register()

	return nil
}
