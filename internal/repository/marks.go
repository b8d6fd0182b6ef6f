package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/markpoint/backend/internal/domain"
)

const markColumns = `id, user_id, category_id, name, info, latitude, longitude, geohash, photos, start_at, duration, end_at, is_ended, created_at, updated_at`

// CreateMark persists a new mark
func (r *PostgresRepository) CreateMark(ctx context.Context, params domain.CreateMarkParams) (*domain.Mark, error) {
	query := `
		INSERT INTO marks (user_id, category_id, name, info, latitude, longitude, geohash, photos, start_at, duration, end_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + markColumns

	row := r.db.QueryRow(ctx, query,
		params.UserID,
		params.CategoryID,
		params.Name,
		params.Info,
		params.Latitude,
		params.Longitude,
		params.Geohash,
		params.Photos,
		params.StartAt,
		params.Duration,
		params.EndAt,
	)

	return scanMark(row)
}

// GetMarkByID retrieves a mark by ID
func (r *PostgresRepository) GetMarkByID(ctx context.Context, id uuid.UUID) (*domain.Mark, error) {
	query := `SELECT ` + markColumns + ` FROM marks WHERE id = $1`
	return scanMark(r.db.QueryRow(ctx, query, id))
}

// UpdateMark applies the non-nil fields and returns the updated row
func (r *PostgresRepository) UpdateMark(ctx context.Context, id uuid.UUID, params domain.UpdateMarkParams) (*domain.Mark, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.CategoryID != nil {
		set("category_id", *params.CategoryID)
	}
	if params.Name != nil {
		set("name", *params.Name)
	}
	if params.Info != nil {
		set("info", *params.Info)
	}
	if params.Latitude != nil {
		set("latitude", *params.Latitude)
	}
	if params.Longitude != nil {
		set("longitude", *params.Longitude)
	}
	if params.Geohash != nil {
		set("geohash", *params.Geohash)
	}
	if params.Duration != nil {
		set("duration", *params.Duration)
	}
	if params.EndAt != nil {
		set("end_at", *params.EndAt)
	}

	query := `UPDATE marks SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + markColumns
	return scanMark(r.db.QueryRow(ctx, query, args...))
}

// DeleteMark removes a mark and returns the deleted row
func (r *PostgresRepository) DeleteMark(ctx context.Context, id uuid.UUID) (*domain.Mark, error) {
	query := `DELETE FROM marks WHERE id = $1 RETURNING ` + markColumns
	return scanMark(r.db.QueryRow(ctx, query, id))
}

// MarkExists checks if a mark exists
func (r *PostgresRepository) MarkExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM marks WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// GetMarksByArea returns marks in the given geohash cells whose active
// window overlaps [minStart, maxEnd], newest first. The cell membership is
// the coarse pre-filter; the caller refines with the exact distance check.
func (r *PostgresRepository) GetMarksByArea(ctx context.Context, cells []string, minStart, maxEnd time.Time, showEnded bool, limit int) ([]*domain.Mark, error) {
	query := `
		SELECT ` + markColumns + `
		FROM marks
		WHERE geohash = ANY($1)
		  AND start_at <= $2
		  AND end_at >= $3
		  AND ($4 OR is_ended = FALSE)
		ORDER BY created_at DESC
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, query, cells, maxEnd, minStart, showEnded, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []*domain.Mark
	for rows.Next() {
		mark, err := scanMark(rows)
		if err != nil {
			return nil, err
		}
		marks = append(marks, mark)
	}
	return marks, rows.Err()
}

func scanMark(row pgx.Row) (*domain.Mark, error) {
	var mark domain.Mark
	err := row.Scan(
		&mark.ID,
		&mark.UserID,
		&mark.CategoryID,
		&mark.Name,
		&mark.Info,
		&mark.Latitude,
		&mark.Longitude,
		&mark.Geohash,
		&mark.Photos,
		&mark.StartAt,
		&mark.Duration,
		&mark.EndAt,
		&mark.IsEnded,
		&mark.CreatedAt,
		&mark.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMarkNotFound
		}
		return nil, err
	}
	return &mark, nil
}
