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

// PlannerHandler wires learning goal and study session routes.
type PlannerHandler struct {
	service service.PlannerService
	logger  zerolog.Logger
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(service service.PlannerService, logger zerolog.Logger) *PlannerHandler {
	return &PlannerHandler{
		service: service,
		logger:  logger.With().Str("component", "planner_handler").Logger(),
	}
}

// Register attaches planner endpoints to the router group.
func (h *PlannerHandler) Register(router fiber.Router) {
	goals := router.Group("/goals")
	goals.Get("", h.listGoals)
	goals.Post("", h.createGoal)
	goals.Patch("/:id", h.updateGoal)
	goals.Delete("/:id", h.deleteGoal)

	sessions := router.Group("/sessions")
	sessions.Get("", h.listSessions)
	sessions.Post("", h.createSession)
	sessions.Patch("/:id", h.updateSession)
	sessions.Delete("/:id", h.deleteSession)
}

func (h *PlannerHandler) listGoals(c *fiber.Ctx) error {
	goals, err := h.service.ListGoals(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "goals retrieved", goals)
}

func (h *PlannerHandler) createGoal(c *fiber.Ctx) error {
	var payload dto.GoalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.CreateGoal(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "goal created", goal)
}

func (h *PlannerHandler) updateGoal(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GoalUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.UpdateGoal(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "goal updated", goal)
}

func (h *PlannerHandler) deleteGoal(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteGoal(c.Context(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "goal deleted", fiber.Map{"id": id})
}

func (h *PlannerHandler) listSessions(c *fiber.Ctx) error {
	sessions, err := h.service.ListSessions(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *PlannerHandler) createSession(c *fiber.Ctx) error {
	var payload dto.SessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.CreateSession(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session created", session)
}

func (h *PlannerHandler) updateSession(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SessionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.UpdateSession(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "session updated", session)
}

func (h *PlannerHandler) deleteSession(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteSession(c.Context(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "session deleted", fiber.Map{"id": id})
}

func (h *PlannerHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrPlannerItemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "planner item not found")
	case errors.Is(err, service.ErrSessionWindow):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
