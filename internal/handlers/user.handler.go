package handlers

import (
	"gentrack/internal/app"
	userController "gentrack/internal/controllers/users"
	"gentrack/internal/handlers/middleware"
	"gentrack/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	userController userController.UserControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		userController: app.UserController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	profile := h.router.Group("/profile", h.middleware.RequireAuth())
	profile.Put("/password", h.changePassword)

	users := h.router.Group("/users", h.middleware.RequireAuth(), h.middleware.RequireAdmin())

	users.Get("/", h.list)
	users.Post("/", h.create)
	users.Put("/:id", h.update)
	users.Delete("/:id", h.remove)
	users.Post("/:id/reset-password", h.resetPassword)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.userController.List(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, err)
	}

	profiles := make([]any, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToProfile())
	}

	return c.JSON(fiber.Map{"users": profiles})
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req userController.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.userController.Create(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user.ToProfile()})
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req userController.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse update request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.userController.Update(c.UserContext(), middleware.GetUser(c), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": user.ToProfile()})
}

func (h *UserHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.userController.Delete(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User deactivated"})
}

func (h *UserHandler) changePassword(c *fiber.Ctx) error {
	log := h.log.Function("changePassword")

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse change request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.userController.ChangePassword(
		c.UserContext(),
		middleware.GetUser(c),
		req.CurrentPassword,
		req.NewPassword,
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *UserHandler) resetPassword(c *fiber.Ctx) error {
	log := h.log.Function("resetPassword")

	id, err := parseIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse reset request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err = h.userController.ResetPassword(c.UserContext(), middleware.GetUser(c), id, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}
