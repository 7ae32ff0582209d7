package domain

// Identity is the authenticated user's profile data. It is created on login,
// immutable for the lifetime of a session and destroyed on logout.
type Identity struct {
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Provider    Provider `json:"provider"`
}

// Session is the in-memory authentication state for one profile.
// A session starts hydrating; after the first store read it settles into
// either logged-out or authenticated and is mutated only by login/logout.
type Session struct {
	Identity        *Identity `json:"identity,omitempty"`
	IsAuthenticated bool      `json:"is_authenticated"`
	IsHydrating     bool      `json:"is_hydrating"`
}

// LoggedOut returns the settled anonymous session
func LoggedOut() Session {
	return Session{IsAuthenticated: false, IsHydrating: false}
}
