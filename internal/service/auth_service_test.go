package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

type stubUserStore struct {
	byEmail    map[string]model.User
	byID       map[string]model.User
	created    []model.User
	adminCount int
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		byEmail: map[string]model.User{},
		byID:    map[string]model.User{},
	}
}

func (s *stubUserStore) add(u model.User) {
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *stubUserStore) Create(_ context.Context, u model.User) error {
	s.created = append(s.created, u)
	s.add(u)
	return nil
}

func (s *stubUserStore) Update(_ context.Context, u model.User) error {
	s.add(u)
	return nil
}

func (s *stubUserStore) Delete(_ context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

func (s *stubUserStore) List(context.Context) ([]model.Profile, error) {
	return nil, nil
}

func (s *stubUserStore) CountByRole(_ context.Context, role string) (int, error) {
	if role == model.RoleAdmin {
		return s.adminCount, nil
	}
	return 0, nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	store := newStubUserStore()
	store.add(model.User{
		ID:           "u1",
		Email:        "agent@example.com",
		Role:         model.RoleAgent,
		PasswordHash: hashPassword(t, "correct horse"),
	})
	auth := NewAuthService(store)

	user, err := auth.Login(context.Background(), "agent@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	// Leading whitespace around the email is tolerated.
	_, err = auth.Login(context.Background(), "  agent@example.com ", "correct horse")
	assert.NoError(t, err)
}

func TestAuthService_LoginFailuresAreUniform(t *testing.T) {
	store := newStubUserStore()
	store.add(model.User{
		ID:           "u1",
		Email:        "agent@example.com",
		PasswordHash: hashPassword(t, "correct horse"),
	})
	auth := NewAuthService(store)

	_, wrongPassword := auth.Login(context.Background(), "agent@example.com", "wrong")
	_, unknownEmail := auth.Login(context.Background(), "nobody@example.com", "correct horse")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)

	// Both failure modes surface as the same unauthorized error.
	var apiErr *apierror.APIError
	require.ErrorAs(t, wrongPassword, &apiErr)
	assert.Equal(t, apiErr.Error(), unknownEmail.Error())
}

func TestAuthService_EnsureAdminSeedsWhenNoneExist(t *testing.T) {
	store := newStubUserStore()
	auth := NewAuthService(store)

	err := auth.EnsureAdmin(context.Background(), "admin@example.com", "Admin", "bootstrap-pw")
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	admin := store.created[0]
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.NotEmpty(t, admin.ID)
	assert.True(t, strings.HasPrefix(admin.PasswordHash, "$2"), "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("bootstrap-pw")))
}

func TestAuthService_EnsureAdminSkipsWhenAdminExists(t *testing.T) {
	store := newStubUserStore()
	store.adminCount = 1
	auth := NewAuthService(store)

	require.NoError(t, auth.EnsureAdmin(context.Background(), "admin@example.com", "Admin", "bootstrap-pw"))
	assert.Empty(t, store.created)
}

func TestAuthService_EnsureAdminRequiresPassword(t *testing.T) {
	store := newStubUserStore()
	auth := NewAuthService(store)

	err := auth.EnsureAdmin(context.Background(), "admin@example.com", "Admin", "  ")
	require.Error(t, err)
	assert.Empty(t, store.created)
}
