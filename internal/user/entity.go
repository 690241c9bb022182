// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"

	"github.com/carterperez-dev/projectboard/internal/policy"
)

type User struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Role         policy.Role `db:"role"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// MemberRole lets user slices go through the policy selectors.
func (u User) MemberRole() policy.Role {
	return u.Role
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsManager() bool {
	return u.Role == policy.RoleManager
}
