package web

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	"carbusiness-backend/internal/domain/ports/adapter"
	"carbusiness-backend/internal/domain/ports/repository"
	"carbusiness-backend/internal/infra/i18n"
	"carbusiness-backend/internal/usecase"
)

const testJWTSecret = "test-secret"
const testAdminKey = "test-admin-key"

// --- Mock Repositories (Ports) ---

type mockProfileRepo struct {
	repository.ProfileRepository // Embed interface for forward compatibility
	mu                           sync.Mutex
	profiles                     map[string]*model.Profile
	FindByIDError                error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfileRepo) CountPremium(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.profiles {
		if p.IsPremium {
			n++
		}
	}
	return n, nil
}

type mockCodeRepo struct {
	repository.ActivationCodeRepository // Embed interface
	mu                                  sync.Mutex
	codes                               []*model.ActivationCode
	profiles                            *mockProfileRepo
	SaveError                           error
	RedeemError                         error
}

func newMockCodeRepo(profiles *mockProfileRepo) *mockCodeRepo {
	return &mockCodeRepo{profiles: profiles}
}

func (m *mockCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	cp := *code
	m.codes = append(m.codes, &cp)
	return nil
}

func (m *mockCodeRepo) CountRecentByUser(ctx context.Context, tx repository.Tx, userID string, window time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-window)
	n := 0
	for _, c := range m.codes {
		if c.UserID != nil && *c.UserID == userID && c.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (m *mockCodeRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.CodeStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.codes {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockCodeRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.CodeStatus, offset, limit int) ([]*model.ActivationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActivationCode
	for _, c := range m.codes {
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

func (m *mockCodeRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CodeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == id && c.Status == model.CodeStatusPending {
			c.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockCodeRepo) ExpireStale(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var n int64
	for _, c := range m.codes {
		if c.Status == model.CodeStatusPending && now.After(c.ExpiresAt) {
			c.Status = model.CodeStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *mockCodeRepo) Redeem(ctx context.Context, code, userID string) (repository.RedemptionOutcome, error) {
	if m.RedeemError != nil {
		return repository.RedemptionOutcome{}, m.RedeemError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, c := range m.codes {
		if c.Status == model.CodeStatusPending && c.Code == strings.ToUpper(code) {
			if now.After(c.ExpiresAt) {
				return repository.RedemptionOutcome{Success: false, Message: "Código inválido ou expirado."}, nil
			}
			c.Status = model.CodeStatusActivated
			c.ActivatedAt = &now

			m.profiles.mu.Lock()
			p, ok := m.profiles.profiles[userID]
			if !ok {
				p = &model.Profile{ID: userID}
				m.profiles.profiles[userID] = p
			}
			p.IsPremium = true
			exp := now.Add(model.PremiumPeriod)
			p.PremiumExpiresAt = &exp
			m.profiles.mu.Unlock()

			return repository.RedemptionOutcome{Success: true, Message: "Premium ativado com sucesso!"}, nil
		}
	}
	return repository.RedemptionOutcome{Success: false, Message: "Código inválido ou expirado."}, nil
}

// --- Mock Adapters ---

type mockAI struct {
	reply string
	err   error
}

func (m *mockAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"test-model"}, nil
}

func (m *mockAI) Chat(ctx context.Context, mdl string, messages []adapter.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type mockStorage struct {
	uploadErr error
	lastName  string
}

func (m *mockStorage) UploadProof(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.lastName = filename
	io.Copy(io.Discard, r)
	return fmt.Sprintf("https://cdn.example.com/payment-proofs/%s/%s", userID, filename), nil
}

// memLimiter is a fixed-window counter without the Redis backing.
type memLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemLimiter() *memLimiter {
	return &memLimiter{counts: make(map[string]int)}
}

func (m *memLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

// --- Fixtures ---

type testEnv struct {
	server   *Server
	profiles *mockProfileRepo
	codes    *mockCodeRepo
	ai       *mockAI
	storage  *mockStorage
	limiter  *memLimiter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "pt")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	profiles := newMockProfileRepo()
	codes := newMockCodeRepo(profiles)
	ai := &mockAI{reply: "Olá! Como posso ajudar?"}
	storage := &mockStorage{}
	limiter := newMemLimiter()

	activationUC := usecase.NewActivationUseCase(codes, nil, "244922600720", tr, &logger)
	chatUC := usecase.NewChatUseCase(ai, activationUC, tr, "google/gemini-2.5-flash", &logger)
	premiumUC := usecase.NewPremiumUseCase(profiles, nil, &logger)

	srv := NewServer(
		activationUC, chatUC, premiumUC, storage,
		NewAuthVerifier(testJWTSecret), testAdminKey,
		limiter, 5, tr, &logger,
	)
	return &testEnv{
		server:   srv,
		profiles: profiles,
		codes:    codes,
		ai:       ai,
		storage:  storage,
		limiter:  limiter,
	}
}

// mintToken signs a bearer token the way the hosted auth provider would.
func mintToken(t *testing.T, userID, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
