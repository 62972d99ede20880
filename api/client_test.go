package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"netbill.com/console/auth"
)

type fakeRedirector struct {
	mu        sync.Mutex
	redirects int
}

func (f *fakeRedirector) AtLogin() bool { return false }

func (f *fakeRedirector) RedirectToLogin() {
	f.mu.Lock()
	f.redirects++
	f.mu.Unlock()
}

func (f *fakeRedirector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirects
}

func bearerToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(ttl).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func adminProfile() *auth.Profile {
	return &auth.Profile{
		ID:              "a1",
		Name:            "Asha",
		RoleCode:        auth.RoleAdmin,
		AllowedFeatures: []string{auth.PermPaymentsView},
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Store, *fakeRedirector) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	persist := auth.NewMemoryPersister()
	store := auth.NewStore(persist, zerolog.Nop())
	redirect := &fakeRedirector{}
	guard := auth.NewSessionGuard(store, redirect, time.Minute, zerolog.Nop())
	t.Cleanup(guard.StopMonitor)

	return NewClient(srv.URL, store, persist, guard, zerolog.Nop()), store, redirect
}

func writeSession(t *testing.T, w http.ResponseWriter, user *auth.Profile, token string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"user": user, "token": token}); err != nil {
		t.Errorf("encode session response: %v", err)
	}
}

func TestLoginBypassesTokenInjection(t *testing.T) {
	var gotAuthHeader string
	token := bearerToken(t, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Authorization")
		writeSession(t, w, adminProfile(), token)
	})
	client, store, _ := newTestClient(t, mux)

	user, err := client.Login(context.Background(), "9000000001", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotAuthHeader != "" {
		t.Errorf("login request carried Authorization %q; want none", gotAuthHeader)
	}
	if user.RoleCode != auth.RoleAdmin {
		t.Errorf("RoleCode = %q; want ADMIN", user.RoleCode)
	}
	if !store.IsAuthenticated() || store.Token() != token {
		t.Error("login must install the returned session")
	}
}

func TestLoginRejectionIsCredentialError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "wrong password"})
	})
	client, store, redirect := newTestClient(t, mux)
	store.SetSession(adminProfile(), bearerToken(t, time.Hour))

	_, err := client.Login(context.Background(), "9000000001", "bad")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v; want ErrInvalidCredentials", err)
	}
	if !strings.Contains(err.Error(), "wrong password") {
		t.Errorf("err = %v; want the server message surfaced verbatim", err)
	}
	// A 401 from login is a form failure, never a forced logout.
	if !store.IsAuthenticated() {
		t.Error("resident session must survive a failed login attempt")
	}
	if redirect.count() != 0 {
		t.Error("no redirect expected on a credential error")
	}
}

func TestAuthBypassSurvivesPrefixedBaseURL(t *testing.T) {
	token := bearerToken(t, time.Hour)
	var loginAuthHeader, resourceAuthHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		loginAuthHeader = r.Header.Get("Authorization")
		writeSession(t, w, adminProfile(), token)
	})
	mux.HandleFunc("GET /api/v1/customers", func(w http.ResponseWriter, r *http.Request) {
		resourceAuthHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	persist := auth.NewMemoryPersister()
	store := auth.NewStore(persist, zerolog.Nop())
	guard := auth.NewSessionGuard(store, &fakeRedirector{}, time.Minute, zerolog.Nop())
	t.Cleanup(guard.StopMonitor)
	client := NewClient(srv.URL+"/api/v1", store, persist, guard, zerolog.Nop())

	// No resident session: login must still be classified as an auth
	// endpoint under the base path prefix and reach the server.
	if _, err := client.Login(context.Background(), "9000000001", "secret"); err != nil {
		t.Fatalf("login under prefixed base URL: %v", err)
	}
	if loginAuthHeader != "" {
		t.Errorf("login request carried Authorization %q; want none", loginAuthHeader)
	}
	if _, err := client.ListCustomers(context.Background()); err != nil {
		t.Fatalf("list customers under prefixed base URL: %v", err)
	}
	if resourceAuthHeader != "Bearer "+token {
		t.Errorf("Authorization = %q; want bearer token on resource calls", resourceAuthHeader)
	}
}

func TestPersistedTokenCarriesRequestBeforeHydration(t *testing.T) {
	token := bearerToken(t, time.Hour)
	var gotAuthHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /customers", func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	persist := auth.NewMemoryPersister()
	if err := persist.Save(adminProfile(), token); err != nil {
		t.Fatalf("save session: %v", err)
	}
	// The store is deliberately not hydrated; the pipeline must fall
	// back to the persisted mirror for the bearer.
	store := auth.NewStore(persist, zerolog.Nop())
	guard := auth.NewSessionGuard(store, &fakeRedirector{}, time.Minute, zerolog.Nop())
	t.Cleanup(guard.StopMonitor)
	client := NewClient(srv.URL, store, persist, guard, zerolog.Nop())

	if _, err := client.ListCustomers(context.Background()); err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if gotAuthHeader != "Bearer "+token {
		t.Errorf("Authorization = %q; want the persisted bearer", gotAuthHeader)
	}
}

func TestMissingSessionShortCircuits(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })
	client, _, _ := newTestClient(t, mux)

	_, err := client.ListCustomers(context.Background())
	if !errors.Is(err, auth.ErrMissingToken) {
		t.Fatalf("err = %v; want ErrMissingToken", err)
	}
	if hits != 0 {
		t.Errorf("request reached the network %d times; want 0", hits)
	}
}

func TestExpiredSessionShortCircuits(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })
	client, store, redirect := newTestClient(t, mux)
	store.SetSession(adminProfile(), bearerToken(t, -time.Second))

	_, err := client.ListCustomers(context.Background())
	if !errors.Is(err, auth.ErrSessionInvalid) {
		t.Fatalf("err = %v; want ErrSessionInvalid", err)
	}
	if hits != 0 {
		t.Errorf("request reached the network %d times; want 0", hits)
	}
	if store.IsAuthenticated() {
		t.Error("expired session must be cleared before dispatch")
	}
	if redirect.count() != 1 {
		t.Errorf("redirects = %d; want 1", redirect.count())
	}
}

func TestBearerAttachedToResourceCalls(t *testing.T) {
	token := bearerToken(t, time.Hour)
	var gotAuthHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /customers", func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})
	client, store, _ := newTestClient(t, mux)
	store.SetSession(adminProfile(), token)

	if _, err := client.ListCustomers(context.Background()); err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if gotAuthHeader != "Bearer "+token {
		t.Errorf("Authorization = %q; want bearer token", gotAuthHeader)
	}
}

func TestServer401ClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /customers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "session revoked"})
	})
	client, store, redirect := newTestClient(t, mux)
	store.SetSession(adminProfile(), bearerToken(t, time.Hour))

	_, err := client.ListCustomers(context.Background())
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("err = %v; want ErrUnauthorized", err)
	}
	if store.IsAuthenticated() {
		t.Error("a 401 from a resource call must clear the session")
	}
	if redirect.count() != 1 {
		t.Errorf("redirects = %d; want 1", redirect.count())
	}
}

func TestOtherErrorsPassThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /payments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "ledger offline"})
	})
	client, store, redirect := newTestClient(t, mux)
	store.SetSession(adminProfile(), bearerToken(t, time.Hour))

	_, err := client.ListPayments(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v; want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Message != "ledger offline" {
		t.Errorf("APIError = %+v; want 500 / ledger offline", apiErr)
	}
	if !store.IsAuthenticated() {
		t.Error("non-401 failures must not touch the session")
	}
	if redirect.count() != 0 {
		t.Error("non-401 failures must not redirect")
	}
}

func TestImpersonationReplacesSession(t *testing.T) {
	adminToken := bearerToken(t, time.Hour)
	agentToken := bearerToken(t, time.Hour)
	admin := adminProfile()
	agent := &auth.Profile{ID: "g7", Name: "Ravi", RoleCode: auth.RoleAgent, ImpersonatedBy: admin}

	var gotBody impersonateRequest
	var gotAuthHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/impersonate", func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode impersonate body: %v", err)
		}
		writeSession(t, w, agent, agentToken)
	})
	mux.HandleFunc("POST /auth/impersonate/exit", func(w http.ResponseWriter, r *http.Request) {
		writeSession(t, w, admin, adminToken)
	})
	client, store, _ := newTestClient(t, mux)
	store.SetSession(admin, adminToken)

	user, err := client.ImpersonateAgent(context.Background(), "g7")
	if err != nil {
		t.Fatalf("impersonate: %v", err)
	}
	if gotAuthHeader != "" {
		t.Errorf("impersonation request carried Authorization %q; want none", gotAuthHeader)
	}
	if gotBody.AgentID != "g7" || gotBody.Token != adminToken {
		t.Errorf("impersonate body = %+v; want agentId g7 with the admin bearer", gotBody)
	}
	if !user.IsImpersonating() || store.Token() != agentToken {
		t.Error("impersonation must replace the whole session")
	}

	restored, err := client.ExitImpersonation(context.Background())
	if err != nil {
		t.Fatalf("exit impersonation: %v", err)
	}
	if restored.IsImpersonating() || store.Token() != adminToken {
		t.Error("exit must restore the admin session")
	}
}

func TestLogoutClearsLocalStateEvenWhenAPIFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, store, _ := newTestClient(t, mux)
	store.SetSession(adminProfile(), bearerToken(t, time.Hour))

	if err := client.Logout(context.Background()); err == nil {
		t.Error("remote failure should be reported")
	}
	if store.IsAuthenticated() {
		t.Error("logout must clear local state regardless of the API answer")
	}
}
