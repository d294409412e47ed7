package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate-hub/internal/model"
	"estate-hub/pkg/apierror"
)

type BlogStore interface {
	FindByID(ctx context.Context, id string) (model.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (model.BlogPost, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p model.BlogPost) error
	Update(ctx context.Context, p model.BlogPost) error
	Approve(ctx context.Context, id string, adminID string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q model.BlogQuery) ([]model.BlogPost, model.Meta, error)
}

type BlogService struct {
	store BlogStore
	now   func() time.Time
}

func NewBlogService(store BlogStore) *BlogService {
	return &BlogService{store: store, now: time.Now}
}

func (s *BlogService) Create(ctx context.Context, authorID string, req model.BlogPostRequest) (model.BlogPost, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.BlogPost{}, apierror.BadRequest("title is required", "title")
	}

	slug, err := uniqueSlug(ctx, slugify(title), s.store.ExistsBySlug)
	if err != nil {
		return model.BlogPost{}, err
	}

	now := s.now().UTC()
	post := model.BlogPost{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		Slug:      slug,
		Excerpt:   strings.TrimSpace(req.Excerpt),
		Body:      req.Body,
		CoverURL:  strings.TrimSpace(req.CoverURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, post); err != nil {
		return model.BlogPost{}, err
	}
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, actorID string, actorRole string, id string, req model.BlogPostRequest) (model.BlogPost, error) {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.BlogPost{}, err
	}

	if post.AuthorID != actorID && !strings.EqualFold(actorRole, model.RoleAdmin) {
		return model.BlogPost{}, apierror.Forbidden("not the post author")
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		post.Title = title
	}
	post.Excerpt = strings.TrimSpace(req.Excerpt)
	post.Body = req.Body
	post.CoverURL = strings.TrimSpace(req.CoverURL)
	post.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, post); err != nil {
		return model.BlogPost{}, err
	}
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, actorID string, actorRole string, id string) (model.BlogPost, error) {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.BlogPost{}, err
	}

	if post.AuthorID != actorID && !strings.EqualFold(actorRole, model.RoleAdmin) {
		return model.BlogPost{}, apierror.Forbidden("not the post author")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return model.BlogPost{}, err
	}
	return post, nil
}

func (s *BlogService) Approve(ctx context.Context, adminID string, id string) (model.BlogPost, error) {
	at := s.now().UTC()
	if err := s.store.Approve(ctx, id, adminID, at); err != nil {
		return model.BlogPost{}, err
	}
	return s.store.FindByID(ctx, id)
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	return s.store.FindBySlug(ctx, slug)
}

func (s *BlogService) Query(ctx context.Context, q model.BlogQuery) ([]model.BlogPost, model.Meta, error) {
	return s.store.Query(ctx, q)
}
