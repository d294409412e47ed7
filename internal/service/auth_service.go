package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Profile, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Login verifies the credentials and returns the authenticated user.
// Credential failures are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return model.User{}, apierror.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, apierror.Unauthorized("invalid credentials")
	}

	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

// EnsureAdmin seeds an initial administrator when none exists. A blank
// password disables seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, name string, password string) error {
	count, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if strings.TrimSpace(password) == "" {
		return errors.New("no admin user exists and ADMIN_PASSWORD is not set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := model.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		Name:         name,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	slog.Info("seeded initial admin user", "email", admin.Email)
	return nil
}
