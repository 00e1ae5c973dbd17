package services

import (
	"context"
	"crypto/subtle"

	"github.com/Dosada05/sports-meet/utils"
)

const RoleAdmin = "admin"

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Admin struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthService interface {
	Enabled() bool
	Login(ctx context.Context, input LoginInput) (*Admin, error)
}

type authService struct {
	username     string
	passwordHash string
}

// NewAuthService checks logins against a single admin account. With an empty
// password hash every login fails with ErrAuthDisabled.
func NewAuthService(username, passwordHash string) AuthService {
	return &authService{username: username, passwordHash: passwordHash}
}

func (s *authService) Enabled() bool {
	return s.passwordHash != ""
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Admin, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.username)) == 1
	passOK := utils.CheckPasswordHash(input.Password, s.passwordHash)
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return &Admin{Username: s.username, Role: RoleAdmin}, nil
}
