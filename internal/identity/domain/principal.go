package domain

import userdomain "biblio/backend/internal/user/domain"

// Principal is the authenticated identity reconstructed per request from a
// valid access token. It is passed explicitly to downstream authorization and
// never cached beyond the request.
type Principal struct {
	UserID    string
	Email     string
	SessionID string
	Roles     []userdomain.Role
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role userdomain.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal carries the admin authority.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(userdomain.RoleAdmin)
}

// RoleNames returns the principal's roles as plain strings, e.g. for policy input.
func (p *Principal) RoleNames() []string {
	out := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		out = append(out, string(r))
	}
	return out
}
