package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

type ListingStore interface {
	FindByID(ctx context.Context, id string) (model.Listing, error)
	FindBySlug(ctx context.Context, slug string) (model.Listing, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, l model.Listing) error
	Update(ctx context.Context, l model.Listing) error
	Approve(ctx context.Context, id string, adminID string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q model.ListingQuery) ([]model.Listing, model.Meta, error)
}

type ListingService struct {
	store ListingStore
	now   func() time.Time
}

func NewListingService(store ListingStore) *ListingService {
	return &ListingService{store: store, now: time.Now}
}

func (s *ListingService) Create(ctx context.Context, ownerID string, req model.ListingRequest) (model.Listing, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Listing{}, apierror.BadRequest("title is required", "title")
	}
	if req.Price < 0 {
		return model.Listing{}, apierror.BadRequest("price cannot be negative", "price")
	}

	slug, err := uniqueSlug(ctx, slugify(title), s.store.ExistsBySlug)
	if err != nil {
		return model.Listing{}, err
	}

	now := s.now().UTC()
	listing := model.Listing{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		City:        strings.TrimSpace(req.City),
		Address:     strings.TrimSpace(req.Address),
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqm:     req.AreaSqm,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, listing); err != nil {
		return model.Listing{}, err
	}
	return listing, nil
}

// Update modifies a listing owned by the caller. Admins may edit any
// listing.
func (s *ListingService) Update(ctx context.Context, actorID string, actorRole string, id string, req model.ListingRequest) (model.Listing, error) {
	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Listing{}, err
	}

	if listing.OwnerID != actorID && !strings.EqualFold(actorRole, model.RoleAdmin) {
		return model.Listing{}, apierror.Forbidden("not the listing owner")
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		listing.Title = title
	}
	listing.Description = strings.TrimSpace(req.Description)
	if req.Price >= 0 {
		listing.Price = req.Price
	}
	listing.City = strings.TrimSpace(req.City)
	listing.Address = strings.TrimSpace(req.Address)
	listing.Bedrooms = req.Bedrooms
	listing.Bathrooms = req.Bathrooms
	listing.AreaSqm = req.AreaSqm
	listing.ImageURL = strings.TrimSpace(req.ImageURL)
	listing.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, listing); err != nil {
		return model.Listing{}, err
	}
	return listing, nil
}

func (s *ListingService) Delete(ctx context.Context, actorID string, actorRole string, id string) (model.Listing, error) {
	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Listing{}, err
	}

	if listing.OwnerID != actorID && !strings.EqualFold(actorRole, model.RoleAdmin) {
		return model.Listing{}, apierror.Forbidden("not the listing owner")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return model.Listing{}, err
	}
	return listing, nil
}

// Approve publishes a listing and stamps the approving admin. The
// caller must already have passed the admin check.
func (s *ListingService) Approve(ctx context.Context, adminID string, id string) (model.Listing, error) {
	at := s.now().UTC()
	if err := s.store.Approve(ctx, id, adminID, at); err != nil {
		return model.Listing{}, err
	}
	return s.store.FindByID(ctx, id)
}

func (s *ListingService) GetBySlug(ctx context.Context, slug string) (model.Listing, error) {
	return s.store.FindBySlug(ctx, slug)
}

func (s *ListingService) GetByID(ctx context.Context, id string) (model.Listing, error) {
	return s.store.FindByID(ctx, id)
}

func (s *ListingService) Query(ctx context.Context, q model.ListingQuery) ([]model.Listing, model.Meta, error) {
	return s.store.Query(ctx, q)
}
