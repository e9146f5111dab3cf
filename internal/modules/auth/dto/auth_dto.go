package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Role     string `json:"role" binding:"required,oneof=student owner"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`

	FirstName  string `json:"first_name" binding:"required_if=Role student,max=100"`
	LastName   string `json:"last_name" binding:"max=100"`
	University string `json:"university" binding:"max=150"`

	FullName    string `json:"full_name" binding:"required_if=Role owner,max=150"`
	CompanyName string `json:"company_name" binding:"max=150"`
}

type LoginRequest struct {
	Role     string `json:"role" binding:"required,oneof=student owner"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72,nefield=CurrentPassword"`
}

type AdminResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
	Account     any       `json:"account"`
}

// GoogleUser is the subset of the Google userinfo response used for sign-in.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}
