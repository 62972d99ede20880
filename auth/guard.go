package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultCheckInterval is how often the monitor re-validates a resident
// session when no interval is configured.
const DefaultCheckInterval = 60 * time.Second

// Redirector is how the guard forces navigation. The console shell
// supplies the real implementation; tests plug in a fake.
type Redirector interface {
	// AtLogin reports whether the operator is already on the login
	// screen, in which case enforcement skips the redirect.
	AtLogin() bool
	RedirectToLogin()
}

// SessionGuard watches the resident session and enforces expiry. The
// request pipeline calls it before every dispatch and the monitor
// calls it on a timer, so a stale token is caught even while the
// operator is idle.
type SessionGuard struct {
	store    *Store
	redirect Redirector
	interval time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewSessionGuard wires a guard to the store. A zero interval falls
// back to DefaultCheckInterval.
func NewSessionGuard(store *Store, redirect Redirector, interval time.Duration, log zerolog.Logger) *SessionGuard {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &SessionGuard{
		store:    store,
		redirect: redirect,
		interval: interval,
		log:      log,
	}
}

// ValidateAndEnforce checks the resident token. With no token it
// reports false and does nothing. An expired or undecodable token
// triggers Enforce. A valid token reports true with no side effect.
// Redundant calls are safe: once the session is cleared, later calls
// find nothing to enforce.
func (g *SessionGuard) ValidateAndEnforce() bool {
	token := g.store.Token()
	if token == "" {
		return false
	}
	if !IsExpired(token) {
		return true
	}
	g.log.Info().Msg("session token expired, enforcing logout")
	g.Enforce()
	return false
}

// Enforce runs the enforcement sequence unconditionally: clear the
// store and its persisted mirror, then send the operator to the login
// screen unless they are already there. Harmless when nothing is
// resident, so racing callers at worst repeat a no-op.
func (g *SessionGuard) Enforce() {
	g.store.ClearSession()
	if g.redirect != nil && !g.redirect.AtLogin() {
		g.redirect.RedirectToLogin()
	}
}

// StartMonitor begins the periodic expiry check, running one check
// immediately. It does nothing while unauthenticated, and at most one
// monitor runs per guard; extra calls are no-ops. Call it on session
// establishment.
func (g *SessionGuard) StartMonitor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cron != nil {
		return
	}
	if !g.ValidateAndEnforce() {
		return
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", g.interval), g.tick); err != nil {
		g.log.Error().Err(err).Msg("schedule session monitor failed")
		return
	}
	c.Start()
	g.cron = c
	g.log.Debug().Dur("interval", g.interval).Msg("session monitor started")
}

func (g *SessionGuard) tick() {
	if !g.store.IsAuthenticated() {
		// Session went away since the last tick; tear the timer down.
		g.StopMonitor()
		return
	}
	g.ValidateAndEnforce()
}

// StopMonitor cancels the periodic check. Called on logout and on
// shutdown; safe when no monitor is running.
func (g *SessionGuard) StopMonitor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cron == nil {
		return
	}
	g.cron.Stop()
	g.cron = nil
	g.log.Debug().Msg("session monitor stopped")
}
