package fiber

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"netbill.com/console/auth"
)

// Console navigation middleware built on auth.Decide. Unlike an API,
// the console answers humans: unauthenticated operators are redirected
// to the login screen with the intended path preserved, and operators
// lacking a role or permission land on the unauthorized screen.

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Guard enforces a route requirement.
func Guard(store *auth.Store, req *auth.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch auth.Decide(store, req) {
		case auth.DecisionLogin:
			return c.Redirect(LoginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		case auth.DecisionPending:
			return c.Status(fiber.StatusAccepted).SendString("Signing in...")
		case auth.DecisionUnauthorized:
			return c.Redirect(UnauthorizedPath, fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireAuth admits any operator with a valid session.
func RequireAuth(store *auth.Store) fiber.Handler {
	return Guard(store, auth.RequireAuth())
}

// RequireSuperAdmin admits super admins only.
func RequireSuperAdmin(store *auth.Store) fiber.Handler {
	return Guard(store, auth.RequireRoles(auth.RoleSuperAdmin))
}

// RequireAdmin admits admins and super admins.
func RequireAdmin(store *auth.Store) fiber.Handler {
	return Guard(store, auth.RequireRoles(auth.RoleSuperAdmin, auth.RoleAdmin))
}

// RequirePermission admits operators holding the given feature.
func RequirePermission(store *auth.Store, permission string) fiber.Handler {
	return Guard(store, auth.RequirePermissions(permission))
}
