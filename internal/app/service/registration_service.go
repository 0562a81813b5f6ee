package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common/security"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/model"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/repository"
)

const minPasswordLength = 5

// Two-part shape only: local part, "@", domain with a dot somewhere after it.
var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

type RegistrationService struct {
	userRepo repository.UserRepository
}

func NewRegistrationService(userRepo repository.UserRepository) *RegistrationService {
	return &RegistrationService{userRepo: userRepo}
}

type RegistrationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates exactly one user row, or none. The duplicate-email check is
// a name-collision check only; no password comparison happens here.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest) error {
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("email is not valid: %w", common.ErrBadRequest)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, common.ErrBadRequest)
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return fmt.Errorf("user already exists: %w", common.ErrBadRequest)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          req.Email,
		HashedPassword: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict if a concurrent registration won the race.
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
