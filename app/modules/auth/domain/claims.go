package authdomain

import (
	"time"

	"golang.org/x/text/cases"
)

// Principal is the authenticated caller. It is passed explicitly to every
// service call; nothing reads it from ambient state.
type Principal struct {
	Username string
	Role     Role
}

// SystemPrincipal is used by background jobs.
func SystemPrincipal() Principal {
	return Principal{Username: "system", Role: RoleAdmin}
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

func (p Principal) IsAnonymous() bool { return p.Username == "" }

// Owns reports whether username belongs to the principal, ignoring case.
func (p Principal) Owns(username string) bool {
	if p.IsAnonymous() {
		return false
	}
	fold := cases.Fold()
	return fold.String(p.Username) == fold.String(username)
}

// Claims is what a validated bearer token carries.
type Claims struct {
	Username  string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Principal downgrades an unknown role to member.
func (c *Claims) Principal() Principal {
	role := c.Role
	if !role.IsValid() {
		role = RoleMember
	}
	return Principal{Username: c.Username, Role: role}
}
