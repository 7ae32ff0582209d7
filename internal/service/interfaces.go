package service

import (
	"context"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/dto"
)

// AuthResult contains the auth response and the refresh token to be set as
// an httpOnly cookie
type AuthResult struct {
	AuthResponse *dto.AuthResponse
	RefreshToken string
	ExpiresIn    int // Refresh token expiry in seconds
}

// SessionService owns per-profile session state: hydration from the profile
// store, login/logout, token issuance and observer notification
type SessionService interface {
	Hydrate(ctx context.Context, profileID string) domain.Session
	Current(ctx context.Context, profileID string) domain.Session
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, profileID, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
	GetUser(ctx context.Context, userID string) (*dto.UserInfo, error)
	Subscribe(observer SessionObserver) func()
}

// DepositService drives the deposit/activation state machine for profiles
type DepositService interface {
	Flow(ctx context.Context, profileID string) (*DepositFlow, error)
	SelectAmount(ctx context.Context, profileID string, amountUsd int) (*DepositFlow, error)
	ConfirmSent(ctx context.Context, profileID string) (*DepositFlow, error)
	VerifyLicense(ctx context.Context, profileID, licenseKey string) (*DepositFlow, error)
	Reset(ctx context.Context, profileID string) error
	Record(ctx context.Context, profileID string) (domain.DepositRecord, error)
	OnActivated(hook func(profileID string, amountUsd int))
}
