package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"netbill.com/console/auth"
)

// Billing API paths that must work without a resident session. Requests
// to them skip validation and bearer injection, and a 401 from them is
// a credential failure rather than a dead session. The classification
// is decided once, on the request, and reused for the response.
var authEndpoints = map[string]struct{}{
	loginPath:           {},
	logoutPath:          {},
	impersonatePath:     {},
	impersonateExitPath: {},
}

// authTransport composes the session pipeline around the HTTP send
// path: validate before dispatch, inject the bearer, watch answers for
// a 401. It is the only place the logout-on-401 reaction lives.
type authTransport struct {
	base     http.RoundTripper
	basePath string
	store    *auth.Store
	persist  auth.SessionPersister
	guard    *auth.SessionGuard
	log      zerolog.Logger
}

// isAuthEndpoint classifies by the endpoint the client addressed. The
// billing API may be mounted under a path prefix (the default base URL
// carries /api/v1), so the prefix is stripped before the lookup.
func (t *authTransport) isAuthEndpoint(path string) bool {
	path = strings.TrimPrefix(path, t.basePath)
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	_, ok := authEndpoints[path]
	return ok
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	bypass := t.isAuthEndpoint(req.URL.Path)

	if !bypass {
		token := t.store.Token()
		if token == "" {
			// The store may not have hydrated yet; the persisted
			// mirror is good enough to carry the request.
			token = t.persist.Token()
		}
		if token == "" {
			return nil, auth.ErrMissingToken
		}
		if auth.IsExpired(token) {
			// Same enforcement sequence as the expiry timer, run
			// before the network so the caller sees a session error,
			// not a misleading transport error.
			t.guard.Enforce()
			return nil, auth.ErrSessionInvalid
		}
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !bypass {
		// The server no longer honors the session. Same enforcement
		// sequence as the expiry timer; a no-op if the session is
		// already gone by the time this response lands.
		t.log.Info().Str("path", req.URL.Path).Msg("401 from billing API, clearing session")
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		t.guard.Enforce()
		return nil, auth.ErrUnauthorized
	}

	return resp, nil
}
