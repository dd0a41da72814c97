package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bikebuild/apperr"
	"bikebuild/models"
)

const (
	categoryColumns = `id, build_id, name, sort_order`
	groupColumns    = `id, build_id, name, category_id, sort_order`
	slotColumns     = `id, build_id, category_id, component_key, sort_order, group_id`
)

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.BuildID, &c.Name, &c.SortOrder)
	return c, err
}

func scanGroup(row scanner) (models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.BuildID, &g.Name, &g.CategoryID, &g.SortOrder)
	return g, err
}

func scanSlot(row scanner) (models.Slot, error) {
	var sl models.Slot
	err := row.Scan(&sl.ID, &sl.BuildID, &sl.CategoryID, &sl.ComponentKey, &sl.SortOrder, &sl.GroupID)
	return sl, err
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error), what string) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s row: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", what, err)
	}
	return out, nil
}

// HasCategories reports whether the build has been scaffolded.
func (s *Store) HasCategories(ctx context.Context, buildID string) (bool, error) {
	var id string
	err := s.queryRow(ctx, `SELECT id FROM build_categories WHERE build_id = ? LIMIT 1`, buildID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking categories of build %s: %w", buildID, err)
	}
	return true, nil
}

// CreateCategory inserts c, assigning its id.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = s.newID()
	}
	_, err := s.exec(ctx,
		`INSERT INTO build_categories (`+categoryColumns+`) VALUES (?, ?, ?, ?)`,
		c.ID, c.BuildID, c.Name, c.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("error creating category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category of the build.
func (s *Store) GetCategory(ctx context.Context, buildID, id string) (*models.Category, error) {
	c, err := scanCategory(s.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM build_categories WHERE build_id = ? AND id = ?`, buildID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Category")
		}
		return nil, fmt.Errorf("error getting category %s: %w", id, err)
	}
	return &c, nil
}

// ListCategories lists the build's categories in display order.
func (s *Store) ListCategories(ctx context.Context, buildID string) ([]models.Category, error) {
	rows, err := s.query(ctx,
		`SELECT `+categoryColumns+` FROM build_categories WHERE build_id = ? ORDER BY sort_order, id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return collect(rows, scanCategory, "category")
}

// CreateGroup inserts g, assigning its id.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = s.newID()
	}
	_, err := s.exec(ctx,
		`INSERT INTO build_groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.BuildID, g.Name, g.CategoryID, g.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("error creating group: %w", err)
	}
	return nil
}

// ListGroups lists the build's groups in display order.
func (s *Store) ListGroups(ctx context.Context, buildID string) ([]models.Group, error) {
	rows, err := s.query(ctx,
		`SELECT `+groupColumns+` FROM build_groups WHERE build_id = ? ORDER BY sort_order, id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	return collect(rows, scanGroup, "group")
}

// NextGroupSortOrder returns one past the build's highest group sort order,
// or 0 when it has no groups.
func (s *Store) NextGroupSortOrder(ctx context.Context, buildID string) (int, error) {
	var next int
	err := s.queryRow(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM build_groups WHERE build_id = ?`, buildID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("error reading group sort order: %w", err)
	}
	return next, nil
}

// CreateSlot inserts sl, assigning its id.
func (s *Store) CreateSlot(ctx context.Context, sl *models.Slot) error {
	if sl.ID == "" {
		sl.ID = s.newID()
	}
	_, err := s.exec(ctx,
		`INSERT INTO build_slots (`+slotColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		sl.ID, sl.BuildID, sl.CategoryID, sl.ComponentKey, sl.SortOrder, sl.GroupID,
	)
	if err != nil {
		return fmt.Errorf("error creating slot: %w", err)
	}
	return nil
}

// GetSlot retrieves a slot of the build.
func (s *Store) GetSlot(ctx context.Context, buildID, id string) (*models.Slot, error) {
	sl, err := scanSlot(s.queryRow(ctx,
		`SELECT `+slotColumns+` FROM build_slots WHERE build_id = ? AND id = ?`, buildID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Slot")
		}
		return nil, fmt.Errorf("error getting slot %s: %w", id, err)
	}
	return &sl, nil
}

// ListSlots lists every slot of the build ordered by sort order.
func (s *Store) ListSlots(ctx context.Context, buildID string) ([]models.Slot, error) {
	rows, err := s.query(ctx,
		`SELECT `+slotColumns+` FROM build_slots WHERE build_id = ? ORDER BY sort_order, id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("error listing slots: %w", err)
	}
	return collect(rows, scanSlot, "slot")
}

// ListSlotsByIDs returns the slots among ids that belong to the build.
func (s *Store) ListSlotsByIDs(ctx context.Context, buildID string, ids []string) ([]models.Slot, error) {
	if len(ids) == 0 {
		return []models.Slot{}, nil
	}
	rows, err := s.query(ctx,
		`SELECT `+slotColumns+` FROM build_slots WHERE build_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		stringArgs([]any{buildID}, ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing slots by id: %w", err)
	}
	return collect(rows, scanSlot, "slot")
}

// ListCategorySlots lists the slots of one category in order.
func (s *Store) ListCategorySlots(ctx context.Context, buildID, categoryID string) ([]models.Slot, error) {
	rows, err := s.query(ctx,
		`SELECT `+slotColumns+` FROM build_slots WHERE build_id = ? AND category_id = ? ORDER BY sort_order, id`,
		buildID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("error listing category slots: %w", err)
	}
	return collect(rows, scanSlot, "slot")
}

// FindSlotByComponent returns the first slot (in display order) holding
// componentKey, or nil when the build has none.
func (s *Store) FindSlotByComponent(ctx context.Context, buildID, componentKey string) (*models.Slot, error) {
	sl, err := scanSlot(s.queryRow(ctx,
		`SELECT s.id, s.build_id, s.category_id, s.component_key, s.sort_order, s.group_id
		FROM build_slots s
		JOIN build_categories c ON c.id = s.category_id
		WHERE s.build_id = ? AND s.component_key = ?
		ORDER BY c.sort_order, s.sort_order, s.id
		LIMIT 1`, buildID, componentKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding slot for %s: %w", componentKey, err)
	}
	return &sl, nil
}

// NextSlotSortOrder returns one past the category's highest slot sort order,
// or 0 for an empty category.
func (s *Store) NextSlotSortOrder(ctx context.Context, buildID, categoryID string) (int, error) {
	var next int
	err := s.queryRow(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM build_slots WHERE build_id = ? AND category_id = ?`,
		buildID, categoryID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("error reading slot sort order: %w", err)
	}
	return next, nil
}

// SetSlotSortOrder moves one slot.
func (s *Store) SetSlotSortOrder(ctx context.Context, buildID, id string, sortOrder int) error {
	if _, err := s.exec(ctx,
		`UPDATE build_slots SET sort_order = ? WHERE build_id = ? AND id = ?`, sortOrder, buildID, id,
	); err != nil {
		return fmt.Errorf("error updating sort order of slot %s: %w", id, err)
	}
	return nil
}

// SetSlotsGroup assigns the slots to groupID, replacing prior membership.
func (s *Store) SetSlotsGroup(ctx context.Context, buildID string, ids []string, groupID string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.exec(ctx,
		`UPDATE build_slots SET group_id = ? WHERE build_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		stringArgs([]any{groupID, buildID}, ids)...,
	); err != nil {
		return fmt.Errorf("error assigning slots to group %s: %w", groupID, err)
	}
	return nil
}

// DeleteSlot removes a slot of the build.
func (s *Store) DeleteSlot(ctx context.Context, buildID, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM build_slots WHERE build_id = ? AND id = ?`, buildID, id)
	if err != nil {
		return false, fmt.Errorf("error deleting slot %s: %w", id, err)
	}
	n, err := affected(res, "slot delete")
	return n > 0, err
}
