// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// RegisterReq represents the request body for /api/auth/register.
// Presence and format are checked by the usecase so every field error carries its domain message.
type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"max=254"`
	Password string `json:"password"`
}

// LoginReq represents the request body for /api/auth/login.
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileReq represents the request body for PUT /api/user/profile.
type UpdateProfileReq struct {
	Name string `json:"name"`
}
