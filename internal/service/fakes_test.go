package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/internal/repository"
	"github.com/bitminesocial/mining-service/internal/utils"
	"github.com/google/uuid"
)

// In-memory repository doubles for service tests.

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	r.byEmail[user.Email] = &cp
	r.byID[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, stored.Email)
	*stored = *user
	r.byEmail[user.Email] = stored
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	byHash map[string]*domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byHash: make(map[string]*domain.RefreshToken)}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[token.TokenHash]; ok {
		return repository.ErrDuplicateToken
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	cp := *token
	r.byHash[token.TokenHash] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byHash[tokenHash]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", repository.ErrNotFound)
	}
	cp := *token
	return &cp, nil
}

func (r *fakeTokenRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byHash, tokenHash)
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, token := range r.byHash {
		if token.UserID == userID {
			delete(r.byHash, hash)
		}
	}
	return nil
}

type fakeActivationRepo struct {
	mu          sync.Mutex
	activations []domain.Activation
}

func newFakeActivationRepo() *fakeActivationRepo {
	return &fakeActivationRepo{}
}

func (r *fakeActivationRepo) Create(_ context.Context, activation *domain.Activation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activation.ID == "" {
		activation.ID = uuid.New().String()
	}
	r.activations = append(r.activations, *activation)
	return nil
}

func (r *fakeActivationRepo) ListByUserID(_ context.Context, userID string) ([]domain.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activation
	for i := len(r.activations) - 1; i >= 0; i-- {
		if r.activations[i].UserID == userID {
			out = append(out, r.activations[i])
		}
	}
	return out, nil
}

// fakeSessions serves deposit flow tests that only need an authentication
// answer per profile
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]domain.Session)}
}

func (f *fakeSessions) authenticate(profileID, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[profileID] = domain.Session{
		Identity:        &domain.Identity{Email: email, Provider: domain.ProviderEmail},
		IsAuthenticated: true,
	}
}

func (f *fakeSessions) Hydrate(_ context.Context, profileID string) domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[profileID]
}

func (f *fakeSessions) Current(ctx context.Context, profileID string) domain.Session {
	return f.Hydrate(ctx, profileID)
}

func (f *fakeSessions) Login(context.Context, *dto.LoginRequest) (*AuthResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeSessions) Logout(context.Context, string, string) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeSessions) Refresh(context.Context, string) (*AuthResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeSessions) ValidateToken(context.Context, string) (*domain.TokenClaims, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeSessions) GetUser(context.Context, string) (*dto.UserInfo, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeSessions) Subscribe(SessionObserver) func() {
	return func() {}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.TokenRepository = (*fakeTokenRepo)(nil)
var _ repository.ActivationRepository = (*fakeActivationRepo)(nil)
var _ SessionService = (*fakeSessions)(nil)

func testJWTManager() *utils.JWTManager {
	return utils.NewJWTManager("test-secret-key-that-is-at-least-32-characters-long", 15*time.Minute, 7*24*time.Hour)
}
