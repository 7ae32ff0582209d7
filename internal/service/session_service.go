package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/internal/repository"
	"github.com/bitminesocial/mining-service/internal/store"
	"github.com/bitminesocial/mining-service/internal/utils"
	"github.com/bitminesocial/mining-service/pkg/observability"
	"go.uber.org/zap"
)

// SessionObserver is notified synchronously after every session transition
type SessionObserver func(profileID string, session domain.Session)

// SessionConfig carries the session service tuning knobs
type SessionConfig struct {
	LoginDelay           time.Duration
	ClearDepositOnLogout bool
	BCryptCost           int
	RefreshTokenExpiry   time.Duration
}

// sessionService implements SessionService
type sessionService struct {
	profiles   store.ProfileStore
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *utils.JWTManager
	blacklist  *TokenBlacklistService
	metrics    *observability.EngineMetrics
	logger     *zap.Logger
	cfg        SessionConfig

	mu        sync.RWMutex
	sessions  map[string]domain.Session
	observers map[int]SessionObserver
	nextObsID int
}

// NewSessionService creates the session service
func NewSessionService(
	profiles store.ProfileStore,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *utils.JWTManager,
	blacklist *TokenBlacklistService,
	metrics *observability.EngineMetrics,
	logger *zap.Logger,
	cfg SessionConfig,
) SessionService {
	return &sessionService{
		profiles:   profiles,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		blacklist:  blacklist,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		sessions:   make(map[string]domain.Session),
		observers:  make(map[int]SessionObserver),
	}
}

// Subscribe registers an observer and returns its unsubscribe function.
// Observers are invoked synchronously on login and logout, never while a
// profile is still hydrating.
func (s *sessionService) Subscribe(observer SessionObserver) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = observer
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *sessionService) notify(profileID string, session domain.Session) {
	s.mu.RLock()
	observers := make([]SessionObserver, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.RUnlock()

	for _, o := range observers {
		o(profileID, session)
	}
}

// Hydrate loads the persisted session state for a profile. It reads the
// store once per profile; repeated calls return the settled session. Store
// failures and corrupt values degrade to the logged-out default and are
// never surfaced to the caller.
func (s *sessionService) Hydrate(ctx context.Context, profileID string) domain.Session {
	s.mu.RLock()
	if session, ok := s.sessions[profileID]; ok {
		s.mu.RUnlock()
		return session
	}
	s.mu.RUnlock()

	session := s.loadSession(ctx, profileID)

	s.mu.Lock()
	// Another request may have settled the session while we were reading
	if settled, ok := s.sessions[profileID]; ok {
		s.mu.Unlock()
		return settled
	}
	s.sessions[profileID] = session
	s.mu.Unlock()

	return session
}

func (s *sessionService) loadSession(ctx context.Context, profileID string) domain.Session {
	values, err := s.profiles.Snapshot(ctx, profileID)
	if err != nil {
		s.logger.Warn("profile store unavailable during hydration, treating as logged out",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
		return domain.LoggedOut()
	}

	if values[store.KeyIsLoggedIn] != store.TrueValue {
		return domain.LoggedOut()
	}

	provider := domain.Provider(values[store.KeyLoginProvider])
	if !provider.Valid() {
		provider = domain.ProviderEmail
	}

	return domain.Session{
		Identity: &domain.Identity{
			Email:       values[store.KeyUserEmail],
			DisplayName: values[store.KeyUserName],
			Provider:    provider,
		},
		IsAuthenticated: true,
		IsHydrating:     false,
	}
}

// Current returns the session for a profile, hydrating it if necessary
func (s *sessionService) Current(ctx context.Context, profileID string) domain.Session {
	return s.Hydrate(ctx, profileID)
}

// Login establishes an authenticated identity. The simulated provider
// round-trip takes a fixed delay; the identity is committed to the store
// before anything is returned, so no caller can observe a session that is
// ahead of its persisted state. Calling login on an authenticated session
// simply overwrites the identity.
func (s *sessionService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	provider := domain.Provider(req.Provider)
	if !provider.Valid() {
		return nil, fmt.Errorf("unknown login provider %q", req.Provider)
	}

	email := utils.SanitizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	// Modeled latency of the upstream sign-in call
	if s.cfg.LoginDelay > 0 {
		select {
		case <-time.After(s.cfg.LoginDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	user, err := s.upsertUser(ctx, email, req.DisplayName, provider, req.Password)
	if err != nil {
		return nil, err
	}

	err = s.profiles.SetAll(ctx, user.ID, map[string]string{
		store.KeyIsLoggedIn:    store.TrueValue,
		store.KeyUserEmail:     email,
		store.KeyUserName:      req.DisplayName,
		store.KeyLoginProvider: string(provider),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	session := domain.Session{
		Identity: &domain.Identity{
			Email:       email,
			DisplayName: req.DisplayName,
			Provider:    provider,
		},
		IsAuthenticated: true,
	}

	s.mu.Lock()
	s.sessions[user.ID] = session
	s.mu.Unlock()

	s.notify(user.ID, session)
	s.metrics.Logins.Add(ctx, 1)
	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("provider", string(provider)),
	)

	return s.issueTokens(ctx, user)
}

func (s *sessionService) upsertUser(ctx context.Context, email, displayName string, provider domain.Provider, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		user.DisplayName = displayName
		user.Provider = provider
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
			s.logger.Warn("failed to update last login", zap.Error(err))
		}
		return user, nil
	}
	if !errorsIsNotFound(err) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	user = &domain.User{
		Email:       email,
		DisplayName: displayName,
		Provider:    provider,
	}
	if password != "" {
		hash, err := utils.HashPassword(password, s.cfg.BCryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return user, nil
}

// Logout destroys the identity. The deposit record survives unless the
// clear-on-logout policy is enabled.
func (s *sessionService) Logout(ctx context.Context, profileID, refreshToken string) error {
	keys := []string{
		store.KeyIsLoggedIn,
		store.KeyUserEmail,
		store.KeyUserName,
		store.KeyLoginProvider,
	}
	if s.cfg.ClearDepositOnLogout {
		keys = append(keys,
			store.KeyHasDeposited,
			store.KeyDepositAmount,
			store.KeyDepositDate,
			store.KeyDepositUpdatedAt,
			store.KeyMiningLicense,
		)
	}

	if err := s.profiles.Delete(ctx, profileID, keys...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if refreshToken != "" {
		if err := s.blacklist.AddToken(ctx, refreshToken, s.cfg.RefreshTokenExpiry); err != nil {
			s.logger.Warn("failed to blacklist refresh token", zap.Error(err))
		}
		if err := s.tokenRepo.DeleteByTokenHash(ctx, hashToken(refreshToken)); err != nil {
			s.logger.Warn("failed to delete refresh token", zap.Error(err))
		}
	}

	session := domain.LoggedOut()

	s.mu.Lock()
	s.sessions[profileID] = session
	s.mu.Unlock()

	s.notify(profileID, session)
	s.metrics.Logouts.Add(ctx, 1)
	s.logger.Info("user logged out", zap.String("user_id", profileID))

	return nil
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	tokenHash := hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, fmt.Errorf("invalid refresh token")
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if time.Now().After(dbToken.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired")
	}

	isBlacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, fmt.Errorf("refresh token is blacklisted")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Rotate: blacklist and remove the used token
	if err := s.blacklist.AddToken(ctx, refreshToken, s.cfg.RefreshTokenExpiry); err != nil {
		s.logger.Warn("failed to blacklist rotated token", zap.Error(err))
	}
	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to delete rotated token", zap.Error(err))
	}

	return s.issueTokens(ctx, user)
}

// ValidateToken validates an access token and returns its claims
func (s *sessionService) ValidateToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	return s.jwtManager.ValidateToken(token)
}

// GetUser returns the registry record for a profile
func (s *sessionService) GetUser(ctx context.Context, userID string) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Provider:    string(user.Provider),
	}, nil
}

func (s *sessionService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.tokenRepo.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &AuthResult{
		AuthResponse: &dto.AuthResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   s.jwtManager.GetAccessTokenExpiry(),
			User: dto.UserInfo{
				ID:          user.ID,
				Email:       user.Email,
				DisplayName: user.DisplayName,
				Provider:    string(user.Provider),
			},
		},
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.RefreshTokenExpiry.Seconds()),
	}, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
