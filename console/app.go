package console

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"netbill.com/console/api"
	"netbill.com/console/auth"
	authfiber "netbill.com/console/auth/fiber"
)

// App is the operator-facing console shell. The pages themselves are
// deliberately thin: every screen is a guarded route that fetches
// through the session pipeline and renders what came back.
type App struct {
	fiber *fiber.App
	store *auth.Store
	guard *auth.SessionGuard
	api   *api.Client
	nav   *Navigator
	log   zerolog.Logger
}

func New(store *auth.Store, guard *auth.SessionGuard, client *api.Client, nav *Navigator, log zerolog.Logger) *App {
	app := &App{
		fiber: fiber.New(fiber.Config{
			AppName:               "netbill console",
			DisableStartupMessage: true,
		}),
		store: store,
		guard: guard,
		api:   client,
		nav:   nav,
		log:   log,
	}
	app.registerRoutes()
	return app
}

func (a *App) registerRoutes() {
	f := a.fiber

	f.Use(a.trackNavigation)

	f.Get(authfiber.LoginPath, a.loginPage)
	f.Post(authfiber.LoginPath, a.login)
	f.Post("/logout", a.logout)
	f.Get(authfiber.UnauthorizedPath, a.unauthorizedPage)

	f.Get("/", authfiber.RequireAuth(a.store), a.dashboard)

	f.Get("/customers", authfiber.RequirePermission(a.store, auth.PermCustomerView), a.customers)
	f.Get("/customers/:id", authfiber.RequirePermission(a.store, auth.PermCustomerView), a.customer)
	f.Get("/collection", authfiber.RequirePermission(a.store, auth.PermCollectionView), a.collection)
	f.Get("/payments", authfiber.RequirePermission(a.store, auth.PermPaymentsView), a.payments)
	f.Get("/reports", authfiber.RequirePermission(a.store, auth.PermReportsView), a.reports)
	f.Get("/plans", authfiber.RequirePermission(a.store, auth.PermPlanManage), a.plans)
	f.Get("/agents", authfiber.RequirePermission(a.store, auth.PermAgentManage), a.agents)
	f.Get("/companies", authfiber.Guard(a.store, auth.RequireRoles(auth.RoleSuperAdmin)), a.companies)

	f.Post("/impersonate/:agentID", authfiber.RequireAdmin(a.store), a.impersonate)
	f.Post("/impersonate/exit", authfiber.RequireAuth(a.store), a.exitImpersonation)
}

// trackNavigation keeps the Navigator current and applies any redirect
// the session guard latched while no request was in flight.
func (a *App) trackNavigation(c *fiber.Ctx) error {
	a.nav.Observe(c.Path())
	if a.nav.ConsumeForcedLogin() && c.Path() != authfiber.LoginPath {
		return c.Redirect(authfiber.LoginPath, fiber.StatusFound)
	}
	return c.Next()
}

// Listen blocks serving the console until the listener fails or the
// app is shut down.
func (a *App) Listen(addr string) error {
	return a.fiber.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (a *App) Shutdown() error {
	return a.fiber.Shutdown()
}
