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

// ProgressHandler wires completion tracking routes.
type ProgressHandler struct {
	progress  service.ProgressService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(progress service.ProgressService, dashboard service.DashboardService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the read endpoint.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/:courseId", h.get)
}

// RegisterStudent attaches the mutating endpoints.
func (h *ProgressHandler) RegisterStudent(router fiber.Router) {
	router.Post("/:courseId/complete", h.markComplete)
	router.Delete("/:courseId/complete/:contentId", h.resetComplete)
}

func (h *ProgressHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.progress.Get(c.Context(), userIDFromContext(c), courseID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "progress retrieved", resp)
}

func (h *ProgressHandler) markComplete(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MarkCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.ContentItemID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "content_item_id is required")
	}

	resp, err := h.progress.MarkComplete(c.Context(), userIDFromContext(c), courseID, payload.ContentItemID)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), userIDFromContext(c))
	return utils.SendSuccess(c, "content marked complete", resp)
}

func (h *ProgressHandler) resetComplete(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.progress.ResetComplete(c.Context(), userIDFromContext(c), courseID, contentID)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), userIDFromContext(c))
	return utils.SendSuccess(c, "completion reset", resp)
}

func (h *ProgressHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, "not enrolled in this course")
	case errors.Is(err, service.ErrContentNotInCourse):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
