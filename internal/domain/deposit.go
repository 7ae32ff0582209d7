package domain

import (
	"errors"
	"time"
)

// FlowState is the position of a profile inside the deposit/activation flow
type FlowState string

const (
	StateSelectingAmount               FlowState = "selecting_amount"
	StateAwaitingSentConfirmationClick FlowState = "awaiting_sent_confirmation"
	StateAwaitingLicense               FlowState = "awaiting_license"
	StateConfirmingOnChain             FlowState = "confirming_on_chain"
	StateActivated                     FlowState = "activated"
)

// MinDepositUsd is the floor every selected amount is clamped to
const MinDepositUsd = 250

// DefaultDepositUsd is the pre-selected "recommended" tier
const DefaultDepositUsd = 1000

// Deposit flow errors
var (
	// ErrInvalidLicense is returned when the entered license key does not
	// match the configured mining license
	ErrInvalidLicense = errors.New("invalid mining license")

	// ErrNotInState is returned when a transition is requested from the
	// wrong flow state
	ErrNotInState = errors.New("operation not allowed in current flow state")

	// ErrNotActivated is returned when an operation requires a confirmed
	// deposit and none exists
	ErrNotActivated = errors.New("mining account is not activated")

	// ErrStoreUnavailable wraps persistence failures so callers can retry
	ErrStoreUnavailable = errors.New("profile store unavailable")
)

// DepositRecord is the persisted record of a profile's chosen mining tier
// and activation status. FirstActivatedAt keeps the original activation date
// across upgrades; LastUpdatedAt moves with every confirmed amount change.
type DepositRecord struct {
	SelectedAmountUsd int        `json:"selected_amount_usd"`
	LicenseKey        string     `json:"-"`
	Confirmed         bool       `json:"confirmed"`
	FirstActivatedAt  *time.Time `json:"first_activated_at,omitempty"`
	LastUpdatedAt     *time.Time `json:"last_updated_at,omitempty"`
}

// ClampAmount raises any directly-entered amount to the deposit floor.
// Selecting an amount can never fail, it only clamps.
func ClampAmount(amount int) int {
	if amount < MinDepositUsd {
		return MinDepositUsd
	}
	return amount
}

// DepositOption is one of the preset tiers shown on the deposit page
type DepositOption struct {
	AmountUsd     int    `json:"amount_usd"`
	DailyReturn   string `json:"daily_return"`
	MonthlyReturn string `json:"monthly_return"`
	Recommended   bool   `json:"recommended"`
}

// DepositOptions returns the preset tiers in display order
func DepositOptions() []DepositOption {
	return []DepositOption{
		{AmountUsd: 250, DailyReturn: "0.5%", MonthlyReturn: "15%"},
		{AmountUsd: 500, DailyReturn: "0.6%", MonthlyReturn: "18%"},
		{AmountUsd: 1000, DailyReturn: "0.7%", MonthlyReturn: "21%", Recommended: true},
		{AmountUsd: 2000, DailyReturn: "0.8%", MonthlyReturn: "24%"},
	}
}

// ReturnRates returns the daily and monthly return labels for an amount.
// The brackets are a fixed product lookup, not a computation.
func ReturnRates(amountUsd int) (daily, monthly string) {
	switch {
	case amountUsd <= 250:
		return "0.5%", "15%"
	case amountUsd <= 500:
		return "0.6%", "18%"
	case amountUsd <= 1000:
		return "0.7%", "21%"
	default:
		return "0.8%", "24%"
	}
}
