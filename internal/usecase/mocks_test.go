//go:build !integration

package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	"carbusiness-backend/internal/domain/ports/adapter"
	"carbusiness-backend/internal/domain/ports/repository"
	"carbusiness-backend/internal/infra/i18n"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestTranslator() *i18n.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "pt")
	if err != nil {
		panic(err)
	}
	return tr
}

// memProfileRepo is a small in-memory implementation used by unit tests.
type memProfileRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{store: make(map[string]*model.Profile)}
}

func (m *memProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProfileRepo) CountPremium(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.store {
		if p.IsPremium {
			n++
		}
	}
	return n, nil
}

// memCodeRepo implements ActivationCodeRepository in memory. Redeem mirrors
// the server-side procedure so use-case tests exercise the same contract.
type memCodeRepo struct {
	mu       sync.Mutex
	store    map[string]*model.ActivationCode // by ID
	profiles *memProfileRepo
	saveErr  error
	now      func() time.Time
}

func newMemCodeRepo(profiles *memProfileRepo) *memCodeRepo {
	return &memCodeRepo{
		store:    make(map[string]*model.ActivationCode),
		profiles: profiles,
		now:      time.Now,
	}
}

func (m *memCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.store[code.ID] = &cp
	return nil
}

func (m *memCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if strings.EqualFold(c.Code, code) && c.Status == model.CodeStatusPending {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCodeRepo) CountRecentByUser(ctx context.Context, tx repository.Tx, userID string, window time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-window)
	n := 0
	for _, c := range m.store {
		if c.UserID != nil && *c.UserID == userID && c.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (m *memCodeRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.CodeStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.store {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memCodeRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.CodeStatus, offset, limit int) ([]*model.ActivationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActivationCode
	for _, c := range m.store {
		if c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*model.ActivationCode{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memCodeRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CodeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok || c.Status != model.CodeStatusPending {
		return domain.ErrNotFound
	}
	c.Status = status
	return nil
}

func (m *memCodeRepo) ExpireStale(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := m.now()
	for _, c := range m.store {
		if c.Status == model.CodeStatusPending && c.Expired(now) {
			c.Status = model.CodeStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memCodeRepo) Redeem(ctx context.Context, code, userID string) (repository.RedemptionOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, c := range m.store {
		if !strings.EqualFold(c.Code, code) || c.Status != model.CodeStatusPending {
			continue
		}
		if c.Expired(now) {
			return repository.RedemptionOutcome{Success: false, Message: "Código inválido ou expirado."}, nil
		}
		c.Status = model.CodeStatusActivated
		c.ActivatedAt = &now
		c.UserID = &userID

		if p, ok := m.profiles.store[userID]; ok {
			exp := now.Add(model.PremiumPeriod)
			p.IsPremium = true
			p.PremiumExpiresAt = &exp
		}
		return repository.RedemptionOutcome{Success: true, Message: "Premium ativado com sucesso!"}, nil
	}
	return repository.RedemptionOutcome{Success: false, Message: "Código inválido ou expirado."}, nil
}

// mockAI records calls and answers with a canned reply.
type mockAI struct {
	mu       sync.Mutex
	calls    [][]adapter.Message
	reply    string
	err      error
}

func (m *mockAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"google/gemini-2.5-flash"}, nil
}

func (m *mockAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.calls = append(m.calls, messages)
	return m.reply, nil
}

func (m *mockAI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
