package auth

import (
	"sync"

	"github.com/rs/zerolog"
)

// Store is the single source of truth for the resident session. Reads
// are served from memory; every write goes through the persister
// synchronously. Sessions are replaced whole, never patched field by
// field, and at most one session is resident at a time.
type Store struct {
	mu      sync.RWMutex
	user    *Profile
	token   string
	persist SessionPersister
	log     zerolog.Logger
}

func NewStore(persist SessionPersister, log zerolog.Logger) *Store {
	return &Store{persist: persist, log: log}
}

// Hydrate loads the persisted session, if any. A missing or corrupt
// record reads back as no session; startup never fails on storage.
func (s *Store) Hydrate() {
	user, token := s.persist.Load()
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	if user != nil && token != "" {
		s.log.Debug().Str("role", user.RoleCode).Msg("session hydrated from storage")
	}
}

// SetSession replaces the entire session. Login, impersonation entry
// and impersonation exit all go through here; there is no partial
// update path.
func (s *Store) SetSession(user *Profile, token string) {
	if user != nil && user.AllowedFeatures == nil {
		user.AllowedFeatures = []string{}
	}
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	if err := s.persist.Save(user, token); err != nil {
		s.log.Error().Err(err).Msg("persist session failed")
	}
}

// ClearSession drops the in-memory session and its persisted mirror.
// Idempotent; calling it with nothing resident is a no-op.
func (s *Store) ClearSession() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	if err := s.persist.Clear(); err != nil {
		s.log.Error().Err(err).Msg("clear persisted session failed")
	}
}

// IsAuthenticated is true only when both the profile and the token are
// resident. A token without a profile (or the reverse) is treated as
// unauthenticated.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// HasPermission reports whether the resident operator was granted the
// feature. Advisory only: it gates rendering and navigation, while the
// API enforces the real decision on every call.
func (s *Store) HasPermission(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" {
		return false
	}
	for _, f := range s.user.AllowedFeatures {
		if f == id {
			return true
		}
	}
	return false
}

// HasRole is an exact match against the operator's role code.
func (s *Store) HasRole(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != "" && s.user.RoleCode == code
}

// CompanyScope returns the company the session is scoped to, or nil
// for unscoped super admins and unauthenticated callers.
func (s *Store) CompanyScope() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	return s.user.CompanyID
}
