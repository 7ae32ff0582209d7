package repository

import (
	"context"

	"github.com/bitminesocial/mining-service/internal/domain"
)

// UserRepository defines methods for the account registry
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, userID string) error
}

// TokenRepository defines methods for refresh token persistence
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// ActivationRepository defines methods for the activation audit log
type ActivationRepository interface {
	Create(ctx context.Context, activation *domain.Activation) error
	ListByUserID(ctx context.Context, userID string) ([]domain.Activation, error)
}
