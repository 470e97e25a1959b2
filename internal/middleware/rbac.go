package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ctroy978/umadex-sub002/internal/utils"
)

// Roles the school platform issues.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// RequireRole ensures the authenticated user holds one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[roleFromLocals(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireTeacher gates the assignment, scoring and flag-review surface.
func RequireTeacher() fiber.Handler {
	return RequireRole(RoleTeacher, RoleAdmin)
}

// RequireDebater gates the student debate surface. Teachers pass too so they
// can run through their own assignments.
func RequireDebater() fiber.Handler {
	return RequireRole(RoleStudent, RoleTeacher, RoleAdmin)
}

func roleFromLocals(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalsUserRole).(string)
	return strings.ToLower(strings.TrimSpace(role))
}
