package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireVerifiedTeacher gates course-authoring routes: the caller must be a
// teacher whose application an admin has approved. A pending or rejected
// teacher receives a distinct message so clients can show the approval state.
func RequireVerifiedTeacher() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if role != models.RoleTeacher {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		verified, _ := c.Locals("user_verified").(bool)
		if !verified {
			return utils.SendError(c, fiber.StatusForbidden, "teacher account pending approval")
		}

		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
