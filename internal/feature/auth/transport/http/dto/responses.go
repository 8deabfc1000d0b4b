package dto

import (
	"time"

	"task_backend/internal/feature/auth/domain/entity"
)

// AuthUser is the user summary embedded in an auth response.
type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthRes is returned by register and login.
type AuthRes struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// ProfileRes is the public view of a user. The password hash has no field here.
type ProfileRes struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAuthRes builds an AuthRes from a token and user.
func NewAuthRes(token string, u *entity.User) AuthRes {
	return AuthRes{
		Token: token,
		User:  AuthUser{ID: u.ID, Name: u.Name, Email: u.Email},
	}
}

// NewProfileRes builds a ProfileRes from a user.
func NewProfileRes(u *entity.User) ProfileRes {
	return ProfileRes{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}
