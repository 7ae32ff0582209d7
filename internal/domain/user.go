package domain

import "time"

// Provider identifies how a user signed in
type Provider string

const (
	ProviderEmail     Provider = "email"
	ProviderGoogle    Provider = "google"
	ProviderApple     Provider = "apple"
	ProviderFacebook  Provider = "facebook"
	ProviderMicrosoft Provider = "microsoft"
)

// Valid reports whether p is one of the supported sign-in providers
func (p Provider) Valid() bool {
	switch p {
	case ProviderEmail, ProviderGoogle, ProviderApple, ProviderFacebook, ProviderMicrosoft:
		return true
	}
	return false
}

// User represents an account in the registry
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	Provider     Provider   `json:"provider" db:"provider"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

// Activation represents one recorded activation or upgrade of a mining account
type Activation struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	AmountUsd   int       `json:"amount_usd" db:"amount_usd"`
	LicenseKey  string    `json:"-" db:"license_key"`
	ActivatedAt time.Time `json:"activated_at" db:"activated_at"`
}
