package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is an authority a user carries. Roles are stored and passed around as
// this tagged enum; the "ROLE_"-prefixed wire form exists only at the token
// serialization boundary (ScopeString / ParseScope).
type Role string

const (
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

const scopePrefix = "ROLE_"

// ScopeString renders roles as the space-joined, prefixed scope claim
// embedded in tokens (e.g. "ROLE_MEMBER ROLE_ADMIN").
func ScopeString(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, scopePrefix+strings.ToUpper(string(r)))
	}
	return strings.Join(parts, " ")
}

// ParseScope parses a token scope claim back into roles. Unknown entries are
// dropped rather than invented.
func ParseScope(scope string) []Role {
	var out []Role
	for _, part := range strings.Fields(scope) {
		name := strings.ToLower(strings.TrimPrefix(part, scopePrefix))
		switch Role(name) {
		case RoleMember, RoleLibrarian, RoleAdmin:
			out = append(out, Role(name))
		}
	}
	return out
}

// JoinRoles renders roles in their storage form (space-joined, unprefixed).
func JoinRoles(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, " ")
}

// SplitRoles parses the storage form produced by JoinRoles.
func SplitRoles(s string) []Role {
	var out []Role
	for _, part := range strings.Fields(s) {
		out = append(out, Role(part))
	}
	return out
}

// User is the library patron/staff account as seen by the credential core.
// Book and borrowing data hang off the same id in collaborator services.
type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Roles        []Role
	// Verified is false until the account's mail address is confirmed.
	Verified bool
	// Deleted marks a soft-deleted account; it can never authenticate.
	Deleted bool
	// MustResetPassword forces a password reset before the next login succeeds.
	MustResetPassword bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if len(u.Roles) == 0 {
		u.Roles = []Role{RoleMember}
	}
	return nil
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}
