package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"bikebuild/apperr"
	"bikebuild/models"
)

const partColumns = `id, name, component, weight_g, price, currency, source_url, source_name,
	compatibility_tags, notes, crankset_component_type, handlebars_stem_component_type, created_at`

func scanPart(row scanner) (*models.Part, error) {
	p := &models.Part{}
	var tags *string
	var createdAt int64
	err := row.Scan(&p.ID, &p.Name, &p.Component, &p.WeightG, &p.Price, &p.Currency,
		&p.SourceURL, &p.SourceName, &tags, &p.Notes, &p.CranksetComponentType,
		&p.HandlebarsStemComponentType, &createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.CompatibilityTags = []string{}
	if tags != nil && *tags != "" {
		if err := json.Unmarshal([]byte(*tags), &p.CompatibilityTags); err != nil {
			return nil, fmt.Errorf("error decoding compatibility tags of part %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeTags(tags []string) (*string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

// CreatePart inserts a catalog part, assigning its id and creation time.
func (s *Store) CreatePart(ctx context.Context, p *models.Part) error {
	tags, err := encodeTags(p.CompatibilityTags)
	if err != nil {
		return fmt.Errorf("error encoding compatibility tags: %w", err)
	}
	now := s.nowMillis()
	if p.ID == "" {
		p.ID = s.newID()
	}
	_, err = s.exec(ctx,
		`INSERT INTO parts (`+partColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Component, p.WeightG, p.Price, p.Currency, p.SourceURL, p.SourceName,
		tags, p.Notes, p.CranksetComponentType, p.HandlebarsStemComponentType, now,
	)
	if err != nil {
		return fmt.Errorf("error creating part: %w", err)
	}
	p.CreatedAt = fromMillis(now)
	if p.CompatibilityTags == nil {
		p.CompatibilityTags = []string{}
	}
	return nil
}

// GetPart retrieves a catalog part by id.
func (s *Store) GetPart(ctx context.Context, id string) (*models.Part, error) {
	p, err := scanPart(s.queryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Part")
		}
		return nil, fmt.Errorf("error getting part %s: %w", id, err)
	}
	return p, nil
}

// GetPartsByIDs resolves many parts in one query. Missing ids are absent
// from the result.
func (s *Store) GetPartsByIDs(ctx context.Context, ids []string) (map[string]*models.Part, error) {
	out := make(map[string]*models.Part, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.query(ctx,
		`SELECT `+partColumns+` FROM parts WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(nil, ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("error getting parts by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning part row: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating part rows: %w", err)
	}
	return out, nil
}

// ListParts lists catalog parts, newest first, optionally for one component.
func (s *Store) ListParts(ctx context.Context, component string) ([]*models.Part, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if component != "" {
		rows, err = s.query(ctx, `SELECT `+partColumns+` FROM parts WHERE component = ? ORDER BY created_at DESC, id DESC`, component)
	} else {
		rows, err = s.query(ctx, `SELECT `+partColumns+` FROM parts ORDER BY created_at DESC, id DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing parts: %w", err)
	}
	defer rows.Close()

	parts := []*models.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning part row: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating part rows: %w", err)
	}
	return parts, nil
}

// UpdatePart overwrites every mutable column of p.
func (s *Store) UpdatePart(ctx context.Context, p *models.Part) error {
	tags, err := encodeTags(p.CompatibilityTags)
	if err != nil {
		return fmt.Errorf("error encoding compatibility tags: %w", err)
	}
	res, err := s.exec(ctx,
		`UPDATE parts SET name = ?, component = ?, weight_g = ?, price = ?, currency = ?, source_url = ?,
			source_name = ?, compatibility_tags = ?, notes = ?, crankset_component_type = ?,
			handlebars_stem_component_type = ?
		WHERE id = ?`,
		p.Name, p.Component, p.WeightG, p.Price, p.Currency, p.SourceURL, p.SourceName, tags,
		p.Notes, p.CranksetComponentType, p.HandlebarsStemComponentType, p.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating part %s: %w", p.ID, err)
	}
	n, err := affected(res, "part update")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Part")
	}
	return nil
}

// DeletePart removes a catalog part. Build parts referencing it keep their
// row with part_id cleared.
func (s *Store) DeletePart(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM parts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting part %s: %w", id, err)
	}
	n, err := affected(res, "part delete")
	return n > 0, err
}
