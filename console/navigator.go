package console

import (
	"sync"

	authfiber "netbill.com/console/auth/fiber"
)

// Navigator tracks where the operator currently is and carries forced
// redirects across request cycles. The session guard can fire from a
// timer with no request in flight; it cannot redirect anyone right
// then, so the demand is latched here and consumed by the route
// middleware on the next navigation.
type Navigator struct {
	mu         sync.Mutex
	location   string
	forceLogin bool
}

func NewNavigator() *Navigator {
	return &Navigator{location: authfiber.LoginPath}
}

// Observe records the operator's current location. Called by the shell
// middleware on every request.
func (n *Navigator) Observe(path string) {
	n.mu.Lock()
	n.location = path
	n.mu.Unlock()
}

// AtLogin implements auth.Redirector.
func (n *Navigator) AtLogin() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location == authfiber.LoginPath
}

// RedirectToLogin implements auth.Redirector by latching the demand.
func (n *Navigator) RedirectToLogin() {
	n.mu.Lock()
	n.forceLogin = true
	n.mu.Unlock()
}

// ConsumeForcedLogin reports and resets the latched redirect.
func (n *Navigator) ConsumeForcedLogin() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	forced := n.forceLogin
	n.forceLogin = false
	return forced
}
