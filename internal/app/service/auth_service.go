package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common/security"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/model"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/repository"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// VerifyCredentials resolves a user by email (case-insensitive) and checks the
// password against the stored bcrypt hash. Used for every Basic-auth request
// and for Login.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// Login exchanges valid credentials for a bearer token. Basic auth remains
// accepted on every protected route; the token is a convenience.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := security.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{Token: token}, nil
}
