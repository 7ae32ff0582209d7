package dto

import "github.com/bitminesocial/mining-service/internal/domain"

// LoginRequest represents a sign-in request. Password is optional and kept
// only for the account registry; it is never used to reject a login.
type LoginRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
	Password    string `json:"password"`
}

// NavigateRequest asks the access gate about one destination
type NavigateRequest struct {
	Destination string `json:"destination" binding:"required"`
}

// SelectAmountRequest sets the deposit amount
type SelectAmountRequest struct {
	AmountUsd int `json:"amount_usd" binding:"required,min=1"`
}

// VerifyLicenseRequest submits a mining license key to the license gate
type VerifyLicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
}

// SessionResponse is the current session state for a profile
type SessionResponse struct {
	IsAuthenticated bool             `json:"is_authenticated"`
	IsHydrating     bool             `json:"is_hydrating"`
	Identity        *domain.Identity `json:"identity,omitempty"`
	User            *UserInfo        `json:"user,omitempty"`
}

// DepositFlowResponse describes the current deposit flow, the preset tiers
// and the payment details shown on the deposit page
type DepositFlowResponse struct {
	State              domain.FlowState       `json:"state"`
	SelectedAmountUsd  int                    `json:"selected_amount_usd"`
	Confirmed          bool                   `json:"confirmed"`
	FirstActivatedAt   *string                `json:"first_activated_at,omitempty"`
	LastUpdatedAt      *string                `json:"last_updated_at,omitempty"`
	Options            []domain.DepositOption `json:"options"`
	WalletAddress      string                 `json:"wallet_address"`
	ExchangePartnerURL string                 `json:"exchange_partner_url"`
	DailyReturn        string                 `json:"daily_return"`
	MonthlyReturn      string                 `json:"monthly_return"`
	LicenseError       string                 `json:"license_error,omitempty"`
}

// WithdrawResponse is returned for a permitted withdraw request
type WithdrawResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// LiveUpdate is one websocket frame of the decorative live feed
type LiveUpdate struct {
	Type        string  `json:"type"`
	BalanceUsd  float64 `json:"balance_usd,omitempty"`
	BalanceBtc  float64 `json:"balance_btc,omitempty"`
	HashrateThs float64 `json:"hashrate_ths,omitempty"`
	RewardBtc   float64 `json:"reward_btc,omitempty"`
	RewardUsd   int     `json:"reward_usd,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
