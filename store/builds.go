package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bikebuild/apperr"
	"bikebuild/models"
)

const buildColumns = `id, user_id, name, bike_type, created_at, updated_at`

func scanBuild(row scanner) (*models.Build, error) {
	b := &models.Build{}
	var createdAt, updatedAt int64
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.BikeType, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

// CreateBuild inserts b, assigning its id and timestamps.
func (s *Store) CreateBuild(ctx context.Context, b *models.Build) error {
	now := s.nowMillis()
	if b.ID == "" {
		b.ID = s.newID()
	}
	_, err := s.exec(ctx,
		`INSERT INTO builds (id, user_id, name, bike_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.BikeType, now, now,
	)
	if err != nil {
		return fmt.Errorf("error creating build: %w", err)
	}
	b.CreatedAt = fromMillis(now)
	b.UpdatedAt = b.CreatedAt
	return nil
}

// GetBuild retrieves a build by id.
func (s *Store) GetBuild(ctx context.Context, id string) (*models.Build, error) {
	b, err := scanBuild(s.queryRow(ctx, `SELECT `+buildColumns+` FROM builds WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Build")
		}
		return nil, fmt.Errorf("error getting build %s: %w", id, err)
	}
	return b, nil
}

// ListBuilds lists builds owned by userID, or the unowned builds when userID
// is nil, most recently updated first.
func (s *Store) ListBuilds(ctx context.Context, userID *string) ([]*models.Build, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID == nil {
		rows, err = s.query(ctx, `SELECT `+buildColumns+` FROM builds WHERE user_id IS NULL ORDER BY updated_at DESC, id DESC`)
	} else {
		rows, err = s.query(ctx, `SELECT `+buildColumns+` FROM builds WHERE user_id = ? ORDER BY updated_at DESC, id DESC`, *userID)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing builds: %w", err)
	}
	defer rows.Close()

	builds := []*models.Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning build row: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating build rows: %w", err)
	}
	return builds, nil
}

// UpdateBuild changes the non-nil fields and bumps updated_at.
func (s *Store) UpdateBuild(ctx context.Context, id string, name, bikeType *string) (*models.Build, error) {
	var b *models.Build
	err := s.inTransaction(ctx, func(tx *Store) error {
		existing, err := tx.GetBuild(ctx, id)
		if err != nil {
			return err
		}
		if name != nil {
			existing.Name = *name
		}
		if bikeType != nil {
			existing.BikeType = *bikeType
		}
		now := s.nowMillis()
		if _, err := tx.exec(ctx,
			`UPDATE builds SET name = ?, bike_type = ?, updated_at = ? WHERE id = ?`,
			existing.Name, existing.BikeType, now, id,
		); err != nil {
			return fmt.Errorf("error updating build %s: %w", id, err)
		}
		existing.UpdatedAt = fromMillis(now)
		b = existing
		return nil
	})
	return b, err
}

// DeleteBuild removes a build; its scaffold and build parts cascade.
func (s *Store) DeleteBuild(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM builds WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting build %s: %w", id, err)
	}
	n, err := affected(res, "build delete")
	return n > 0, err
}
