package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
	"github.com/adanyl0v/tasklist/internal/repositories/sessions"
)

var testHashParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

var nopLogger = zerolog.Nop()

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repositories.ErrAlreadyExists
	}
	u := *user
	m.byEmail[user.Email] = &u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) delete(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEmail, email)
}

// memTasks applies the same id AND owner filter as the postgres
// repository.
type memTasks struct {
	mu    sync.Mutex
	byID  map[string]models.Task
	err   error
	calls int
}

func newMemTasks() *memTasks {
	return &memTasks{byID: make(map[string]models.Task)}
}

func (m *memTasks) ListByOwner(_ context.Context, userID string) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var list []*models.Task
	for _, t := range m.byID {
		if t.UserID == userID {
			cp := t
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (m *memTasks) Insert(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.byID[task.ID] = *task
	return nil
}

func (m *memTasks) UpdateIfOwned(_ context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.byID[id]
	if !ok || t.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	m.byID[id] = t
	return &t, nil
}

func (m *memTasks) DeleteIfOwned(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	t, ok := m.byID[id]
	if !ok || t.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memSessions struct {
	mu    sync.Mutex
	byID  map[string]models.Session
	users *memUsers
}

func newMemSessions(users *memUsers) *memSessions {
	return &memSessions{
		byID:  make(map[string]models.Session),
		users: users,
	}
}

func (m *memSessions) Replace(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.UserID == session.UserID {
			delete(m.byID, id)
		}
	}
	m.byID[session.ID] = *session
	return nil
}

func (m *memSessions) FindWithUser(ctx context.Context, sessionID string) (*sessions.Record, error) {
	m.mu.Lock()
	s, ok := m.byID[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u, err := m.users.FindByID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	return &sessions.Record{Session: s, Email: u.Email}, nil
}

func (m *memSessions) FindByRefreshToken(_ context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.RefreshToken == refreshToken && s.Fingerprint == fingerprint {
			cp := s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memSessions) Rotate(_ context.Context, sessionID, oldToken, newToken string, expiresAt, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[sessionID]
	if !ok || s.RefreshToken != oldToken {
		return repositories.ErrNotFound
	}
	s.RefreshToken = newToken
	s.ExpiresAt = expiresAt
	s.UpdatedAt = updatedAt
	m.byID[sessionID] = s
	return nil
}

func (m *memSessions) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.byID {
		if s.UserID == userID {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}
