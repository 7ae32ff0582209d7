package store

import "context"

// Keys of the per-profile state bag. The schema is flat string keys with
// string values; missing keys read as empty strings.
const (
	KeyIsLoggedIn       = "isLoggedIn"
	KeyUserEmail        = "userEmail"
	KeyUserName         = "userName"
	KeyLoginProvider    = "loginProvider"
	KeyHasDeposited     = "hasDeposited"
	KeyDepositAmount    = "depositAmount"
	KeyDepositDate      = "depositDate"
	KeyDepositUpdatedAt = "depositUpdatedAt"
	KeyMiningLicense    = "miningLicense"
)

// TrueValue is the flag value used for boolean keys
const TrueValue = "true"

// ProfileStore is the durable key/value state bag backing sessions and
// deposit records. Writes are last-writer-wins; there is at most one writer
// context per profile.
type ProfileStore interface {
	// Get returns the value for a key, or "" when absent
	Get(ctx context.Context, profileID, key string) (string, error)

	// Set writes a single key
	Set(ctx context.Context, profileID, key, value string) error

	// SetAll writes several keys in one operation
	SetAll(ctx context.Context, profileID string, values map[string]string) error

	// Delete removes the given keys
	Delete(ctx context.Context, profileID string, keys ...string) error

	// Snapshot returns every key currently set for a profile
	Snapshot(ctx context.Context, profileID string) (map[string]string, error)
}
