// AngelaMos | 2026
// role.go

package policy

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// Roles lists every role from highest to lowest rank.
var Roles = []Role{RoleAdmin, RoleManager, RoleUser}

// Rank returns the role's position in the fixed hierarchy, or 0 for
// anything outside the enumeration.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

func (r Role) String() string {
	return string(r)
}

// Compare orders two roles by rank: -1 if a ranks below b, 0 if equal,
// +1 if a ranks above b.
func Compare(a, b Role) int {
	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Actor is the signed-in identity a decision is made for.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Authenticated reports whether the actor can be evaluated at all. A nil
// actor, a missing id or a role outside the enumeration is treated as
// signed out.
func (a *Actor) Authenticated() bool {
	return a != nil && a.ID != "" && a.Role.Valid()
}
