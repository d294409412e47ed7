package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

// UserService covers the admin panel's user management. All callers
// are expected to have passed the admin check already.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	role := strings.ToUpper(strings.TrimSpace(req.Role))

	if email == "" || password == "" {
		return model.Profile{}, apierror.BadRequest("email and password are required", "")
	}
	if !strings.Contains(email, "@") {
		return model.Profile{}, apierror.BadRequest("invalid email address", "email")
	}
	if role == "" {
		role = model.RoleAgent
	}
	if !model.ValidRole(role) {
		return model.Profile{}, apierror.BadRequest("invalid role", role)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Profile{}, err
	}
	if exists {
		return model.Profile{}, apierror.Conflict("email already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return model.Profile{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if role := strings.ToUpper(strings.TrimSpace(req.Role)); role != "" {
		if !model.ValidRole(role) {
			return model.Profile{}, apierror.BadRequest("invalid role", role)
		}
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

// Delete removes a user. The last remaining admin cannot be deleted.
func (s *UserService) Delete(ctx context.Context, actorID string, id string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}

	if strings.EqualFold(user.Role, model.RoleAdmin) {
		count, err := s.users.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return model.Profile{}, err
		}
		if count <= 1 {
			return model.Profile{}, apierror.Conflict("cannot delete the last admin", id)
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *UserService) List(ctx context.Context) ([]model.Profile, error) {
	return s.users.List(ctx)
}
