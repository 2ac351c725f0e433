package app

import (
	"gentrack/config"
	"gentrack/internal/database"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"
	"gentrack/internal/repositories"

	authController "gentrack/internal/controllers/auth"
	gensetController "gentrack/internal/controllers/gensets"
	logController "gentrack/internal/controllers/logs"
	statsController "gentrack/internal/controllers/stats"
	userController "gentrack/internal/controllers/users"
	venueController "gentrack/internal/controllers/venues"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config

	// Repositories
	Repos repositories.Repository

	// Controllers
	AuthController   authController.AuthControllerInterface
	GensetController gensetController.GensetControllerInterface
	VenueController  venueController.VenueControllerInterface
	UserController   userController.UserControllerInterface
	LogController    logController.LogControllerInterface
	StatsController  statsController.StatsControllerInterface
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	repos := repositories.New(db)
	middleware := middleware.New(db, config, repos)

	app := &App{
		Database:   db,
		Config:     config,
		Middleware: middleware,
		Repos:      repos,
		AuthController: authController.New(repos.User, config),
		GensetController: gensetController.New(
			repos.Genset,
			repos.Venue,
			repos.Log,
		),
		VenueController: venueController.New(
			repos.Venue,
			repos.Genset,
			repos.Log,
		),
		UserController:  userController.New(repos.User, repos.Venue),
		LogController:   logController.New(repos.Log, repos.Genset, repos.Venue, repos.User),
		StatsController: statsController.New(repos.Genset, repos.Stats),
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.AuthController,
		a.GensetController,
		a.VenueController,
		a.UserController,
		a.LogController,
		a.StatsController,
		a.Repos.User,
		a.Repos.Venue,
		a.Repos.Genset,
		a.Repos.Log,
		a.Repos.Stats,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() error {
	return a.Database.Close()
}
