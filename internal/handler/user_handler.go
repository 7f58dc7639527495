package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/service"
	"github.com/jackma2003/edubridge-api/internal/utils"
)

// UserHandler wires profile and dashboard routes.
type UserHandler struct {
	users     service.UserService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, dashboard service.DashboardService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches the profile endpoints. The dashboard route is registered
// separately so the router can add the student role gate.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Patch("/me", h.update)
}

// RegisterDashboard attaches the dashboard endpoint.
func (h *UserHandler) RegisterDashboard(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Update(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) getDashboard(c *fiber.Ctx) error {
	resp, err := h.dashboard.Get(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", resp)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
