package auth

import (
	"encoding/json"
	"os"
	"sync"
)

// envelopeVersion guards the on-disk shape. Bump it when sessionState
// changes; older files then read back as empty sessions.
const envelopeVersion = 1

type sessionState struct {
	User  *Profile `json:"user"`
	Token string   `json:"token"`
}

type sessionEnvelope struct {
	State   sessionState `json:"state"`
	Version int          `json:"version"`
}

// SessionPersister mirrors the in-memory session to durable storage so
// a restarted console resumes where it left off. Load must treat a
// missing or unreadable record as an empty session, never an error.
type SessionPersister interface {
	Load() (*Profile, string)
	Save(user *Profile, token string) error
	Clear() error
	// Token reads the bearer straight from storage, bypassing memory.
	// The request pipeline uses it when the store has not hydrated yet.
	Token() string
}

// FilePersister stores the session envelope as a JSON file at a fixed
// path.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) Load() (*Profile, string) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, ""
	}
	var env sessionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ""
	}
	return env.State.User, env.State.Token
}

func (p *FilePersister) Save(user *Profile, token string) error {
	raw, err := json.Marshal(sessionEnvelope{
		State:   sessionState{User: user, Token: token},
		Version: envelopeVersion,
	})
	if err != nil {
		return err
	}
	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

func (p *FilePersister) Clear() error {
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *FilePersister) Token() string {
	_, token := p.Load()
	return token
}

// MemoryPersister keeps the session in memory only. Used in tests and
// anywhere durable sessions are unwanted.
type MemoryPersister struct {
	mu    sync.Mutex
	user  *Profile
	token string
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load() (*Profile, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, p.token
}

func (p *MemoryPersister) Save(user *Profile, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = user
	p.token = token
	return nil
}

func (p *MemoryPersister) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	p.token = ""
	return nil
}

func (p *MemoryPersister) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}
