package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util/errorutil"
)

// RequireAdmin ensures the authenticated principal is an admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Token.Subject != domain.SubjectTypeAdmin {
			return apperrors.NewForbidden("admin required")
		}
		return c.Next()
	}
}
