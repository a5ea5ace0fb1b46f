package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
)

// AuthService checks credentials against the user store. It never writes.
type AuthService struct {
	users  *repositories.UserRepository
	hasher *auth.Hasher
}

func NewAuthService(users *repositories.UserRepository, hasher *auth.Hasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// CheckDuplicate reports whether loginID is already registered.
func (s *AuthService) CheckDuplicate(ctx context.Context, loginID string) (bool, error) {
	return s.users.LoginIDTaken(ctx, loginID)
}

// Authenticate returns the user with loginID if password matches.
func (s *AuthService) Authenticate(ctx context.Context, loginID, password string) (*models.User, error) {
	user, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "The id does not exist.", err)
		}
		return nil, err
	}
	return s.check(user, password)
}

// AuthenticateByID is Authenticate keyed by the internal id, for flows where
// the caller already holds the id but must prove the password again.
func (s *AuthService) AuthenticateByID(ctx context.Context, id, password string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.check(user, password)
}

func (s *AuthService) check(user *models.User, password string) (*models.User, error) {
	if !s.hasher.Verify(password, user.Password) {
		return nil, apperr.InvalidCredentials("The password is incorrect.")
	}
	return user, nil
}
