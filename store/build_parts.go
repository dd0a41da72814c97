package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bikebuild/apperr"
	"bikebuild/models"
)

const buildPartColumns = `id, build_id, build_slot_id, component, part_id, quantity, notes, component_label,
	custom_name, custom_weight_g, custom_price, custom_currency, created_at`

func scanBuildPart(row scanner) (models.BuildPart, error) {
	var bp models.BuildPart
	var createdAt int64
	err := row.Scan(&bp.ID, &bp.BuildID, &bp.BuildSlotID, &bp.Component, &bp.PartID, &bp.Quantity,
		&bp.Notes, &bp.ComponentLabel, &bp.CustomName, &bp.CustomWeightG, &bp.CustomPrice,
		&bp.CustomCurrency, &createdAt)
	if err != nil {
		return bp, err
	}
	bp.CreatedAt = fromMillis(createdAt)
	return bp, nil
}

// CreateBuildPart inserts bp, assigning its id and creation time.
func (s *Store) CreateBuildPart(ctx context.Context, bp *models.BuildPart) error {
	now := s.nowMillis()
	if bp.ID == "" {
		bp.ID = s.newID()
	}
	_, err := s.exec(ctx,
		`INSERT INTO build_parts (`+buildPartColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bp.ID, bp.BuildID, bp.BuildSlotID, bp.Component, bp.PartID, bp.Quantity, bp.Notes,
		bp.ComponentLabel, bp.CustomName, bp.CustomWeightG, bp.CustomPrice, bp.CustomCurrency, now,
	)
	if err != nil {
		return fmt.Errorf("error creating build part: %w", err)
	}
	bp.CreatedAt = fromMillis(now)
	return nil
}

// GetBuildPart retrieves a build part of the build.
func (s *Store) GetBuildPart(ctx context.Context, buildID, id string) (*models.BuildPart, error) {
	bp, err := scanBuildPart(s.queryRow(ctx,
		`SELECT `+buildPartColumns+` FROM build_parts WHERE build_id = ? AND id = ?`, buildID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Build part")
		}
		return nil, fmt.Errorf("error getting build part %s: %w", id, err)
	}
	return &bp, nil
}

// ListBuildParts lists the build's parts oldest first.
func (s *Store) ListBuildParts(ctx context.Context, buildID string) ([]models.BuildPart, error) {
	rows, err := s.query(ctx,
		`SELECT `+buildPartColumns+` FROM build_parts WHERE build_id = ? ORDER BY created_at, id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("error listing build parts: %w", err)
	}
	return collect(rows, scanBuildPart, "build part")
}

// ListSlotlessBuildParts lists the build's parts not yet linked to a slot.
func (s *Store) ListSlotlessBuildParts(ctx context.Context, buildID string) ([]models.BuildPart, error) {
	rows, err := s.query(ctx,
		`SELECT `+buildPartColumns+` FROM build_parts WHERE build_id = ? AND build_slot_id IS NULL ORDER BY created_at, id`,
		buildID)
	if err != nil {
		return nil, fmt.Errorf("error listing unlinked build parts: %w", err)
	}
	return collect(rows, scanBuildPart, "build part")
}

// SetBuildPartSlot links a build part to a slot.
func (s *Store) SetBuildPartSlot(ctx context.Context, buildID, id, slotID string) error {
	if _, err := s.exec(ctx,
		`UPDATE build_parts SET build_slot_id = ? WHERE build_id = ? AND id = ?`, slotID, buildID, id,
	); err != nil {
		return fmt.Errorf("error linking build part %s to slot %s: %w", id, slotID, err)
	}
	return nil
}

// UpdateBuildPart writes the Set fields of patch and returns the stored row.
// Slot, component and part identity are never touched.
func (s *Store) UpdateBuildPart(ctx context.Context, buildID, id string, patch models.BuildPartPatch) (*models.BuildPart, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, set bool, value any) {
		if set {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}
	}
	add("quantity", patch.Quantity.Set, patch.Quantity.Value)
	add("notes", patch.Notes.Set, patch.Notes.Value)
	add("component_label", patch.ComponentLabel.Set, patch.ComponentLabel.Value)
	add("custom_name", patch.CustomName.Set, patch.CustomName.Value)
	add("custom_weight_g", patch.CustomWeightG.Set, patch.CustomWeightG.Value)
	add("custom_price", patch.CustomPrice.Set, patch.CustomPrice.Value)
	add("custom_currency", patch.CustomCurrency.Set, patch.CustomCurrency.Value)

	var bp *models.BuildPart
	err := s.inTransaction(ctx, func(tx *Store) error {
		if _, err := tx.GetBuildPart(ctx, buildID, id); err != nil {
			return err
		}
		if len(sets) > 0 {
			if _, err := tx.exec(ctx,
				`UPDATE build_parts SET `+strings.Join(sets, ", ")+` WHERE build_id = ? AND id = ?`,
				append(args, buildID, id)...,
			); err != nil {
				return fmt.Errorf("error updating build part %s: %w", id, err)
			}
		}
		var err error
		bp, err = tx.GetBuildPart(ctx, buildID, id)
		return err
	})
	return bp, err
}

// DeleteBuildPart removes a build part of the build.
func (s *Store) DeleteBuildPart(ctx context.Context, buildID, id string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM build_parts WHERE build_id = ? AND id = ?`, buildID, id)
	if err != nil {
		return false, fmt.Errorf("error deleting build part %s: %w", id, err)
	}
	n, err := affected(res, "build part delete")
	return n > 0, err
}

// DeleteSlotBuildParts removes every build part linked to the slot.
func (s *Store) DeleteSlotBuildParts(ctx context.Context, buildID, slotID string) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM build_parts WHERE build_id = ? AND build_slot_id = ?`, buildID, slotID)
	if err != nil {
		return 0, fmt.Errorf("error deleting build parts of slot %s: %w", slotID, err)
	}
	return affected(res, "slot build parts delete")
}
