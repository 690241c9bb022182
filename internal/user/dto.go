// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/projectboard/internal/policy"
)

type CreateUserRequest struct {
	FirstName       string `json:"first_name"       validate:"required,min=1,max=100"`
	LastName        string `json:"last_name"        validate:"required,min=1,max=100"`
	Username        string `json:"username"         validate:"required,min=3,max=50,alphanum"`
	Email           string `json:"email"            validate:"required,email,max=255"`
	Password        string `json:"password"         validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role"             validate:"required,oneof=ADMIN MANAGER USER"`
}

type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      policy.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type ListUsersParams struct {
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Search   string      `json:"search"`
	Role     policy.Role `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.FullName(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
