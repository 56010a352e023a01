package userstore

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/verifact"
	"github.com/google/uuid"
)

// Memory is a mutex-guarded map keyed by email.
type Memory struct {
	mu    sync.RWMutex
	users map[string]verifact.UserRecord
	now   func() time.Time
}

var _ verifact.UserStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]verifact.UserRecord),
		now:   time.Now,
	}
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (verifact.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return verifact.UserRecord{}, verifact.ErrUserNotFound
	}
	return cloneRecord(u), nil
}

// CreateUser assigns a fresh UUID. New accounts are enabled and unverified.
func (m *Memory) CreateUser(_ context.Context, in verifact.CreateUserInput) (verifact.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[in.Email]; ok {
		return verifact.UserRecord{}, verifact.ErrAccountExists
	}
	u := verifact.UserRecord{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Enabled:      true,
		Authorities:  append([]string(nil), in.Authorities...),
		CreatedAt:    m.now().UTC(),
	}
	m.users[in.Email] = u
	return cloneRecord(u), nil
}

func (m *Memory) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	return m.update(email, func(u *verifact.UserRecord) { u.PasswordHash = passwordHash })
}

func (m *Memory) MarkEmailVerified(_ context.Context, email string) error {
	return m.update(email, func(u *verifact.UserRecord) { u.EmailVerified = true })
}

// SetEnabled enables or disables an account.
func (m *Memory) SetEnabled(email string, enabled bool) error {
	return m.update(email, func(u *verifact.UserRecord) { u.Enabled = enabled })
}

// Put inserts or replaces a record as-is. Seeding helper.
func (m *Memory) Put(u verifact.UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users[u.Email] = cloneRecord(u)
}

func (m *Memory) update(email string, fn func(*verifact.UserRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return verifact.ErrUserNotFound
	}
	fn(&u)
	m.users[email] = u
	return nil
}

func cloneRecord(u verifact.UserRecord) verifact.UserRecord {
	u.Authorities = append([]string(nil), u.Authorities...)
	return u
}
