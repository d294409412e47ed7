package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

type ContactStore interface {
	Create(ctx context.Context, m model.ContactMessage) error
	List(ctx context.Context, limit int) ([]model.ContactMessage, error)
}

type ContactService struct {
	store ContactStore
}

func NewContactService(store ContactStore) *ContactService {
	return &ContactService{store: store}
}

func (s *ContactService) Submit(ctx context.Context, req model.ContactRequest) (model.ContactMessage, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)

	if name == "" || email == "" || message == "" {
		return model.ContactMessage{}, apierror.BadRequest("name, email and message are required", "")
	}
	if !strings.Contains(email, "@") {
		return model.ContactMessage{}, apierror.BadRequest("invalid email address", "email")
	}
	if len(message) > 5000 {
		return model.ContactMessage{}, apierror.BadRequest("message too long", "message")
	}

	m := model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, m); err != nil {
		return model.ContactMessage{}, err
	}
	return m, nil
}

func (s *ContactService) Recent(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	return s.store.List(ctx, limit)
}
