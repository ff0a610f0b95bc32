package auth

import "time"

// Account represents a user account in the directory. Accounts are never
// deleted, only deactivated.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"role_id,omitempty"`
	RoleName     string    `json:"role,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the identity attached to a request for the duration of its
// authorization checks: either Anonymous or an authenticated Account. It is
// passed by value through the call chain, never layered onto the request.
type Principal struct {
	account       Account
	authenticated bool
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// Authenticated wraps an account in a principal.
func Authenticated(acct Account) Principal {
	return Principal{account: acct, authenticated: true}
}

// IsAnonymous reports whether no account backs this principal.
func (p Principal) IsAnonymous() bool { return !p.authenticated }

// Account returns the backing account. The zero Account is returned for
// the anonymous principal.
func (p Principal) Account() Account { return p.account }

// AccountID returns the backing account ID, or 0 for anonymous.
func (p Principal) AccountID() int64 {
	if !p.authenticated {
		return 0
	}
	return p.account.ID
}
