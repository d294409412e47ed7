package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"estate-hub/internal/model"
)

const blogColumns = `id, author_id, title, slug, excerpt, body, cover_url,
	is_published, approved_by, approved_at, created_at, updated_at`

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

func (r *BlogRepository) FindByID(ctx context.Context, id string) (model.BlogPost, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM blog_posts WHERE id = $1`, blogColumns), id)
	return scanBlogPost(row, id)
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM blog_posts WHERE slug = $1`, blogColumns), slug)
	return scanBlogPost(row, slug)
}

func (r *BlogRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return exists, nil
}

func (r *BlogRepository) Create(ctx context.Context, p model.BlogPost) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO blog_posts (id, author_id, title, slug, excerpt, body, cover_url,
		  is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.AuthorID, p.Title, p.Slug, p.Excerpt, p.Body, p.CoverURL,
		p.IsPublished, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create blog post: %w", err)
	}
	return nil
}

func (r *BlogRepository) Update(ctx context.Context, p model.BlogPost) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE blog_posts
		 SET title = $2, excerpt = $3, body = $4, cover_url = $5, updated_at = $6
		 WHERE id = $1`,
		p.ID, p.Title, p.Excerpt, p.Body, p.CoverURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update blog post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *BlogRepository) Approve(ctx context.Context, id string, adminID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE blog_posts
		 SET is_published = TRUE, approved_by = $2, approved_at = $3, updated_at = $3
		 WHERE id = $1`,
		id, adminID, at)
	if err != nil {
		return fmt.Errorf("approve blog post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *BlogRepository) Query(ctx context.Context, q model.BlogQuery) ([]model.BlogPost, model.Meta, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if q.PublishedOnly {
		where = append(where, "is_published = TRUE")
	}
	if q.PendingOnly {
		where = append(where, "is_published = FALSE")
	}
	if author := strings.TrimSpace(q.AuthorID); author != "" {
		where = append(where, fmt.Sprintf("author_id = $%d", argIdx))
		args = append(args, author)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM blog_posts %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count blog posts: %w", err)
	}

	meta := model.NewMeta(q.Page, q.Limit, total)

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM blog_posts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		blogColumns, whereClause, argIdx, argIdx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query blog posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.BlogPost, 0)
	for rows.Next() {
		p, err := scanBlogPost(rows, "")
		if err != nil {
			return nil, model.Meta{}, err
		}
		posts = append(posts, p)
	}
	return posts, meta, rows.Err()
}

func scanBlogPost(row rowScanner, ref string) (model.BlogPost, error) {
	var p model.BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Excerpt, &p.Body,
		&p.CoverURL, &p.IsPublished, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.BlogPost{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.BlogPost{}, fmt.Errorf("scan blog post: %w", err)
	}
	return p, nil
}
