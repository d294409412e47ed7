package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
)

type memListingStore struct {
	listings map[string]model.Listing
}

func newMemListingStore() *memListingStore {
	return &memListingStore{listings: map[string]model.Listing{}}
}

func (s *memListingStore) FindByID(_ context.Context, id string) (model.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, model.ErrListingNotFound
	}
	return l, nil
}

func (s *memListingStore) FindBySlug(_ context.Context, slug string) (model.Listing, error) {
	for _, l := range s.listings {
		if l.Slug == slug {
			return l, nil
		}
	}
	return model.Listing{}, model.ErrListingNotFound
}

func (s *memListingStore) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	for _, l := range s.listings {
		if l.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *memListingStore) Create(_ context.Context, l model.Listing) error {
	s.listings[l.ID] = l
	return nil
}

func (s *memListingStore) Update(_ context.Context, l model.Listing) error {
	s.listings[l.ID] = l
	return nil
}

func (s *memListingStore) Approve(_ context.Context, id string, adminID string, at time.Time) error {
	l := s.listings[id]
	l.IsPublished = true
	l.ApprovedBy = &adminID
	l.ApprovedAt = &at
	s.listings[id] = l
	return nil
}

func (s *memListingStore) Delete(_ context.Context, id string) error {
	delete(s.listings, id)
	return nil
}

func (s *memListingStore) Query(context.Context, model.ListingQuery) ([]model.Listing, model.Meta, error) {
	return nil, model.Meta{}, nil
}

type failingActivityStore struct{}

func (failingActivityStore) Insert(context.Context, model.Activity) error {
	return errors.New("activity store unavailable")
}

func (failingActivityStore) Query(context.Context, model.ActivityQuery) ([]model.Activity, model.Meta, error) {
	return nil, model.Meta{}, errors.New("activity store unavailable")
}

func newSessionManager() *session.Manager {
	return session.NewManager("handler-test-secret", time.Hour, 10*time.Minute, false, nil)
}

func authenticate(t *testing.T, m *session.Manager, req *http.Request, user model.User) {
	t.Helper()

	token, err := m.Issue(user)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
}

// A broken audit trail must never fail the operation it records.
func TestListingHandler_CreateSucceedsWhenActivityStoreFails(t *testing.T) {
	sessions := newSessionManager()
	recorder := service.NewActivityRecorder(failingActivityStore{}, 16)
	defer recorder.Close(context.Background())

	h := NewListingHandler(service.NewListingService(newMemListingStore()), sessions, recorder)

	body := strings.NewReader(`{"title":"Sea View Flat","price":250000,"city":"Valencia"}`)
	req := httptest.NewRequest("POST", "/api/v1/listings", body)
	authenticate(t, sessions, req, model.User{ID: "u1", Role: model.RoleAgent})

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    model.Listing `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sea-view-flat", resp.Data.Slug)
	assert.Equal(t, "u1", resp.Data.OwnerID)
}

func TestListingHandler_CreateRequiresSession(t *testing.T) {
	sessions := newSessionManager()
	recorder := service.NewActivityRecorder(failingActivityStore{}, 16)
	defer recorder.Close(context.Background())

	h := NewListingHandler(service.NewListingService(newMemListingStore()), sessions, recorder)

	req := httptest.NewRequest("POST", "/api/v1/listings", strings.NewReader(`{"title":"Flat"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListingHandler_ApproveRejectsNonAdmin(t *testing.T) {
	sessions := newSessionManager()
	recorder := service.NewActivityRecorder(failingActivityStore{}, 16)
	defer recorder.Close(context.Background())

	h := NewListingHandler(service.NewListingService(newMemListingStore()), sessions, recorder)

	req := httptest.NewRequest("POST", "/api/v1/listings/l1/approve", nil)
	authenticate(t, sessions, req, model.User{ID: "u1", Role: model.RoleAgent})

	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
