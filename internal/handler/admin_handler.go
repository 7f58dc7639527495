package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/repository"
	"github.com/jackma2003/edubridge-api/internal/service"
	"github.com/jackma2003/edubridge-api/internal/utils"
)

// AdminHandler wires account management and teacher verification routes.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the admin endpoints to the router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Delete("/users/:id", h.deleteUser)
	router.Get("/teachers", h.listApplications)
	router.Post("/teachers/:id/approve", h.approveTeacher)
	router.Post("/teachers/:id/reject", h.rejectTeacher)
	router.Get("/activity", h.listActivity)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		Page:     parseQueryInt(c, "page"),
		PageSize: parseQueryInt(c, "page_size"),
	}

	resp, err := h.service.ListUsers(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "users retrieved", resp)
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteUser(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "user deleted", fiber.Map{"id": id})
}

func (h *AdminHandler) listApplications(c *fiber.Ctx) error {
	items, pagination, err := h.service.ListApplications(c.Context(), c.Query("status"), parseQueryInt(c, "page"), parseQueryInt(c, "page_size"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher applications retrieved", fiber.Map{
		"items":      items,
		"pagination": pagination,
	})
}

func (h *AdminHandler) approveTeacher(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.service.ApproveTeacher(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher approved", resp)
}

func (h *AdminHandler) rejectTeacher(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RejectTeacherRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.RejectTeacher(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher rejected", resp)
}

func (h *AdminHandler) listActivity(c *fiber.Ctx) error {
	filter := repository.ActivityLogFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Page:       parseQueryInt(c, "page"),
		PageSize:   parseQueryInt(c, "page_size"),
	}

	resp, err := h.service.ListActivity(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "activity retrieved", resp)
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "teacher application not found")
	case errors.Is(err, service.ErrApplicationDecided):
		return utils.SendError(c, fiber.StatusConflict, "teacher application already decided")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
