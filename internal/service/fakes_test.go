package service

import (
	"context"
	"sync"
	"time"

	"github.com/studentdash/roster-backend/internal/model"
	"github.com/studentdash/roster-backend/internal/repository"
)

type memAccounts struct {
	mu     sync.Mutex
	byID   map[int]*model.Account
	nextID int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[int]*model.Account)}
}

func (m *memAccounts) GetByID(_ context.Context, id int) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *memAccounts) Create(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

type memTokens struct {
	mu      sync.Mutex
	tokens  map[string]int
	deleted []string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]int)}
}

func (m *memTokens) Save(_ context.Context, tokenID string, accountID int, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenID] = accountID
	return nil
}

func (m *memTokens) Lookup(_ context.Context, tokenID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[tokenID]
	if !ok {
		return 0, repository.ErrTokenNotFound
	}
	return id, nil
}

func (m *memTokens) Delete(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tokenID)
	m.deleted = append(m.deleted, tokenID)
	return nil
}

func (m *memTokens) DeleteAccount(_ context.Context, accountID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, acc := range m.tokens {
		if acc == accountID {
			delete(m.tokens, id)
			m.deleted = append(m.deleted, id)
			n++
		}
	}
	return n, nil
}

func (m *memTokens) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
