package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"estate-hub/internal/model"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Insert(ctx context.Context, a model.Activity) error {
	var metadataJSON []byte
	if a.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("marshal activity metadata: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO activities (id, user_id, action, item_type, item_id, metadata, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, nullIfEmpty(a.UserID), a.Action, nullIfEmpty(a.ItemType), nullIfEmpty(a.ItemID),
		metadataJSON, nullIfEmpty(a.IP), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Query(ctx context.Context, q model.ActivityQuery) ([]model.Activity, model.Meta, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if userID := strings.TrimSpace(q.UserID); userID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, userID)
		argIdx++
	}
	if action := strings.TrimSpace(q.Action); action != "" {
		where = append(where, fmt.Sprintf("upper(action) = upper($%d)", argIdx))
		args = append(args, action)
		argIdx++
	}
	if itemType := strings.TrimSpace(q.ItemType); itemType != "" {
		where = append(where, fmt.Sprintf("upper(item_type) = upper($%d)", argIdx))
		args = append(args, itemType)
		argIdx++
	}
	if from := strings.TrimSpace(q.From); from != "" {
		where = append(where, fmt.Sprintf("created_at >= $%d::timestamptz", argIdx))
		args = append(args, from)
		argIdx++
	}
	if to := strings.TrimSpace(q.To); to != "" {
		where = append(where, fmt.Sprintf("created_at <= $%d::timestamptz", argIdx))
		args = append(args, to)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activities %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count activities: %w", err)
	}

	meta := model.NewMeta(q.Page, q.Limit, total)

	dataQuery := fmt.Sprintf(
		`SELECT id, user_id, action, item_type, item_id, metadata, ip_address, created_at
		 FROM activities %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0)
	for rows.Next() {
		var a model.Activity
		var userID, itemType, itemID, ip *string
		var metadataJSON []byte
		var createdAt time.Time

		if err := rows.Scan(&a.ID, &userID, &a.Action, &itemType, &itemID, &metadataJSON, &ip, &createdAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan activity: %w", err)
		}

		a.UserID = deref(userID)
		a.ItemType = deref(itemType)
		a.ItemID = deref(itemID)
		a.IP = deref(ip)
		a.CreatedAt = createdAt.UTC()

		if len(metadataJSON) > 0 {
			var metadata map[string]any
			if jsonErr := json.Unmarshal(metadataJSON, &metadata); jsonErr == nil {
				a.Metadata = metadata
			}
		}

		activities = append(activities, a)
	}
	return activities, meta, rows.Err()
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
