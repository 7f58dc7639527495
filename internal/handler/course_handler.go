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

// CourseHandler wires course browsing, authoring, enrollment and review routes.
type CourseHandler struct {
	courses     service.CourseService
	enrollments service.EnrollmentService
	dashboard   service.DashboardService
	logger      zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses service.CourseService, enrollments service.EnrollmentService, dashboard service.DashboardService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		enrollments: enrollments,
		dashboard:   dashboard,
		logger:      logger.With().Str("component", "course_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated browse endpoints.
func (h *CourseHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAuthoring attaches the endpoints gated on verified teachers.
func (h *CourseHandler) RegisterAuthoring(router fiber.Router) {
	router.Post("", h.create)
	router.Post("/import", h.importCourse)
}

// RegisterOwner attaches mutation endpoints with in-handler ownership checks.
func (h *CourseHandler) RegisterOwner(router fiber.Router) {
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// RegisterStudent attaches the enrollment and review endpoints.
func (h *CourseHandler) RegisterStudent(router fiber.Router) {
	router.Get("/enrolled", h.listEnrolled)
	router.Post("/:id/enroll", h.enroll)
	router.Delete("/:id/enroll", h.unenroll)
	router.Post("/:id/reviews", h.review)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	req := dto.CourseListRequest{
		Search:   c.Query("search"),
		Level:    c.Query("level"),
		Page:     parseQueryInt(c, "page"),
		PageSize: parseQueryInt(c, "page_size"),
	}

	resp, err := h.courses.List(c.Context(), req)
	if err != nil {
		return h.internalError(c, err)
	}
	return utils.SendSuccess(c, "courses retrieved", resp)
}

// get resolves a course by numeric id, falling back to slug lookup so both
// /courses/42 and /courses/intro-to-go work.
func (h *CourseHandler) get(c *fiber.Ctx) error {
	if id, err := parseUintParam(c, "id"); err == nil {
		resp, err := h.courses.Get(c.Context(), id)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "course retrieved", resp)
	}

	resp, err := h.courses.GetBySlug(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course retrieved", resp)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.courses.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", resp)
}

func (h *CourseHandler) importCourse(c *fiber.Ctx) error {
	resp, err := h.courses.Import(c.Context(), userIDFromContext(c), c.Body())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course imported", resp)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.courses.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course updated", resp)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.courses.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.enrollments.Enroll(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), userIDFromContext(c))
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", resp)
}

func (h *CourseHandler) unenroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.enrollments.Unenroll(c.Context(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), userIDFromContext(c))
	return utils.SendSuccess(c, "unenrolled", fiber.Map{"course_id": id})
}

func (h *CourseHandler) listEnrolled(c *fiber.Ctx) error {
	resp, err := h.enrollments.ListEnrolled(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}
	return utils.SendSuccess(c, "enrollments retrieved", resp)
}

func (h *CourseHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RatingRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.courses.Rate(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "review saved", resp)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "not the course owner")
	case errors.Is(err, service.ErrEmptyModule):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnknownContentType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidImport):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return utils.SendError(c, fiber.StatusConflict, "already enrolled in this course")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, "not enrolled in this course")
	case errors.Is(err, service.ErrEnrollmentForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCourseNotEnrollable):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *CourseHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
