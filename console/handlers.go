package console

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"netbill.com/console/api"
	"netbill.com/console/auth"
	authfiber "netbill.com/console/auth/fiber"
)

type loginForm struct {
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

func (a *App) loginPage(c *fiber.Ctx) error {
	if a.store.IsAuthenticated() {
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"page": "login",
		"next": c.Query("next", "/"),
	})
}

func (a *App) login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed login request"})
	}

	user, err := a.api.Login(c.Context(), form.Phone, form.Password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			// Form-level failure; whatever session existed is intact.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		a.log.Error().Err(err).Msg("login failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "billing API unavailable"})
	}

	a.log.Info().Str("role", user.RoleCode).Msg("operator signed in")
	return c.Redirect(safeNext(form.Next), fiber.StatusFound)
}

// safeNext confines the post-login destination to console-relative
// paths, so a crafted next parameter cannot send the operator off-site.
func safeNext(next string) string {
	if next == "" || next == authfiber.LoginPath {
		return "/"
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (a *App) logout(c *fiber.Ctx) error {
	if err := a.api.Logout(c.Context()); err != nil {
		// Local state is already cleared; the API call is best effort.
		a.log.Warn().Err(err).Msg("remote logout failed")
	}
	return c.Redirect(authfiber.LoginPath, fiber.StatusFound)
}

func (a *App) unauthorizedPage(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"page":  "unauthorized",
		"error": "you do not have access to that screen",
	})
}

func (a *App) dashboard(c *fiber.Ctx) error {
	user := a.store.User()
	return c.JSON(fiber.Map{
		"page":          "dashboard",
		"user":          user,
		"impersonating": user.IsImpersonating(),
	})
}

func (a *App) customers(c *fiber.Ctx) error {
	customers, err := a.api.ListCustomers(c.Context())
	if err != nil {
		return a.renderAPIError(c, err)
	}
	return c.JSON(fiber.Map{"page": "customers", "customers": customers})
}

func (a *App) customer(c *fiber.Ctx) error {
	customer, err := a.api.GetCustomer(c.Context(), c.Params("id"))
	if err != nil {
		return a.renderAPIError(c, err)
	}
	return c.JSON(fiber.Map{"page": "customer", "customer": customer})
}

func (a *App) collection(c *fiber.Ctx) error {
	summary, err := a.api.GetCollectionSummary(c.Context())
	if err != nil {
		return a.renderAPIError(c, err)
	}
	return c.JSON(fiber.Map{"page": "collection", "summary": summary})
}

func (a *App) payments(c *fiber.Ctx) error {
	payments, err := a.api.ListPayments(c.Context())
	if err != nil {
		return a.renderAPIError(c, err)
	}
	return c.JSON(fiber.Map{"page": "payments", "payments": payments})
}

func (a *App) reports(c *fiber.Ctx) error {
	// Report generation happens server-side; the console only lists
	// what is available for the operator's company scope.
	return c.JSON(fiber.Map{"page": "reports", "companyScope": a.store.CompanyScope()})
}

func (a *App) plans(c *fiber.Ctx) error {
	plans, err := a.api.ListPlans(c.Context())
	if err != nil {
		return a.renderAPIError(c, err)
	}
	return c.JSON(fiber.Map{"page": "plans", "plans": plans})
}

func (a *App) agents(c *fiber.Ctx) error {
	agents, err := a.api.ListAgents(c.Context())
	if err != nil {
		return a.renderAPIError(c, err)
	}
	return c.JSON(fiber.Map{"page": "agents", "agents": agents})
}

func (a *App) companies(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "companies"})
}

func (a *App) impersonate(c *fiber.Ctx) error {
	user, err := a.api.ImpersonateAgent(c.Context(), c.Params("agentID"))
	if err != nil {
		return a.renderAPIError(c, err)
	}
	a.log.Info().Str("agent", user.ID).Msg("impersonation started")
	return c.Redirect("/", fiber.StatusFound)
}

func (a *App) exitImpersonation(c *fiber.Ctx) error {
	if _, err := a.api.ExitImpersonation(c.Context()); err != nil {
		return a.renderAPIError(c, err)
	}
	a.log.Info().Msg("impersonation ended")
	return c.Redirect("/", fiber.StatusFound)
}

// renderAPIError maps pipeline errors to console responses. Session
// errors always end at the login screen; everything else surfaces the
// server's message to the page untouched.
func (a *App) renderAPIError(c *fiber.Ctx, err error) error {
	if errors.Is(err, auth.ErrSessionInvalid) || errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrUnauthorized) {
		return c.Redirect(authfiber.LoginPath, fiber.StatusFound)
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(fiber.Map{"error": apiErr.Message})
	}
	a.log.Error().Err(err).Str("path", c.Path()).Msg("request to billing API failed")
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "billing API unavailable"})
}
