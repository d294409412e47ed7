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

const listingColumns = `id, owner_id, title, slug, description, price, city, address,
	bedrooms, bathrooms, area_sqm, image_url, is_published, approved_by, approved_at,
	created_at, updated_at`

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (model.Listing, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns), id)
	return scanListing(row, id)
}

func (r *ListingRepository) FindBySlug(ctx context.Context, slug string) (model.Listing, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM listings WHERE slug = $1`, listingColumns), slug)
	return scanListing(row, slug)
}

func (r *ListingRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check listing slug: %w", err)
	}
	return exists, nil
}

func (r *ListingRepository) Create(ctx context.Context, l model.Listing) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO listings (id, owner_id, title, slug, description, price, city, address,
		  bedrooms, bathrooms, area_sqm, image_url, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		l.ID, l.OwnerID, l.Title, l.Slug, l.Description, l.Price, l.City, l.Address,
		l.Bedrooms, l.Bathrooms, l.AreaSqm, l.ImageURL, l.IsPublished, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, l model.Listing) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings
		 SET title = $2, description = $3, price = $4, city = $5, address = $6,
		     bedrooms = $7, bathrooms = $8, area_sqm = $9, image_url = $10, updated_at = $11
		 WHERE id = $1`,
		l.ID, l.Title, l.Description, l.Price, l.City, l.Address,
		l.Bedrooms, l.Bathrooms, l.AreaSqm, l.ImageURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

// Approve marks the listing published and stamps the approving admin.
func (r *ListingRepository) Approve(ctx context.Context, id string, adminID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings
		 SET is_published = TRUE, approved_by = $2, approved_at = $3, updated_at = $3
		 WHERE id = $1`,
		id, adminID, at)
	if err != nil {
		return fmt.Errorf("approve listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Query(ctx context.Context, q model.ListingQuery) ([]model.Listing, model.Meta, error) {
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
	if owner := strings.TrimSpace(q.OwnerID); owner != "" {
		where = append(where, fmt.Sprintf("owner_id = $%d", argIdx))
		args = append(args, owner)
		argIdx++
	}
	if city := strings.TrimSpace(q.City); city != "" {
		where = append(where, fmt.Sprintf("lower(city) = lower($%d)", argIdx))
		args = append(args, city)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count listings: %w", err)
	}

	meta := model.NewMeta(q.Page, q.Limit, total)

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM listings %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, argIdx, argIdx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows, "")
		if err != nil {
			return nil, model.Meta{}, err
		}
		listings = append(listings, l)
	}
	return listings, meta, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner, ref string) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Slug, &l.Description, &l.Price,
		&l.City, &l.Address, &l.Bedrooms, &l.Bathrooms, &l.AreaSqm, &l.ImageURL,
		&l.IsPublished, &l.ApprovedBy, &l.ApprovedAt, &l.CreatedAt, &l.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Listing{}, model.ErrListingNotFound
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("scan listing: %w", err)
	}
	return l, nil
}

