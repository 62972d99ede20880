package auth

// Requirement specifies what a console route demands. The zero value
// admits any authenticated operator.
type Requirement struct {
	Roles       []string
	Permissions []string
}

// RequireRoles creates a Requirement for role-based authorization.
func RequireRoles(roles ...string) *Requirement {
	return &Requirement{Roles: roles}
}

// RequirePermissions creates a Requirement for permission-based authorization.
func RequirePermissions(permissions ...string) *Requirement {
	return &Requirement{Permissions: permissions}
}

// RequireAuth creates a Requirement that only demands a valid session.
func RequireAuth() *Requirement {
	return &Requirement{}
}

// Decision is the outcome of evaluating one navigation attempt.
type Decision int

const (
	// DecisionAllow renders the destination.
	DecisionAllow Decision = iota
	// DecisionLogin sends the operator to the login screen, preserving
	// the intended destination for the post-login return.
	DecisionLogin
	// DecisionPending renders a placeholder: a token is resident but
	// the profile has not been fetched yet. Transient, re-evaluated on
	// the next state change.
	DecisionPending
	// DecisionUnauthorized sends the operator to the unauthorized
	// screen.
	DecisionUnauthorized
)

// Decide evaluates a navigation attempt against the resident session.
// Checks run in a fixed order and the first match wins: session
// presence, profile readiness, permissions, then roles. A nil
// requirement behaves like RequireAuth.
func Decide(store *Store, req *Requirement) Decision {
	if !store.IsAuthenticated() {
		if store.Token() != "" && store.User() == nil {
			return DecisionPending
		}
		return DecisionLogin
	}
	if req == nil {
		return DecisionAllow
	}
	for _, p := range req.Permissions {
		if !store.HasPermission(p) {
			return DecisionUnauthorized
		}
	}
	if len(req.Roles) > 0 {
		matched := false
		for _, r := range req.Roles {
			if store.HasRole(r) {
				matched = true
				break
			}
		}
		if !matched {
			return DecisionUnauthorized
		}
	}
	return DecisionAllow
}
