package scaffold

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bikebuild/apperr"
	"bikebuild/models"
	"bikebuild/store"
	"bikebuild/taxonomy"
)

// Mutator evolves a scaffold after it has been materialized.
type Mutator struct {
	repo    store.Repository
	builder *Builder
	log     *zap.Logger
}

func NewMutator(repo store.Repository, builder *Builder, log *zap.Logger) *Mutator {
	return &Mutator{repo: repo, builder: builder, log: log}
}

// CreateGroup clusters slotIDs under a new group called name. The group's
// category is the category of the first listed slot, even when the slots
// span several categories. Prior group membership of the slots is replaced.
func (m *Mutator) CreateGroup(ctx context.Context, buildID, name string, slotIDs []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	ids := dedupe(slotIDs)
	if name == "" || len(ids) == 0 {
		return nil, apperr.Invalid("Invalid name or slotIds")
	}
	if err := m.builder.EnsureLayout(ctx, buildID); err != nil {
		return nil, err
	}

	var g *models.Group
	err := m.repo.WithTx(ctx, func(tx store.Repository) error {
		slots, err := tx.ListSlotsByIDs(ctx, buildID, ids)
		if err != nil {
			return err
		}
		if len(slots) != len(ids) {
			return apperr.Invalid("Invalid name or slotIds")
		}
		var categoryID string
		for _, sl := range slots {
			if sl.ID == ids[0] {
				categoryID = sl.CategoryID
			}
		}

		sortOrder, err := tx.NextGroupSortOrder(ctx, buildID)
		if err != nil {
			return err
		}
		g = &models.Group{BuildID: buildID, Name: name, CategoryID: &categoryID, SortOrder: sortOrder}
		if err := tx.CreateGroup(ctx, g); err != nil {
			return err
		}
		return tx.SetSlotsGroup(ctx, buildID, ids, g.ID)
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("created slot group",
		zap.String("build_id", buildID),
		zap.String("group_id", g.ID),
		zap.Int("slots", len(ids)))
	return g, nil
}

// ReorderSlots sets the order of every slot in a category to its index in
// orderedSlotIDs. The list must name each slot of the category exactly
// once; anything else is rejected without changing any slot. An empty list
// is accepted and changes nothing.
func (m *Mutator) ReorderSlots(ctx context.Context, buildID, categoryID string, orderedSlotIDs []string) error {
	if len(orderedSlotIDs) == 0 {
		return nil
	}
	invalid := apperr.Invalid("Invalid category or slotIds")

	err := m.repo.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetCategory(ctx, buildID, categoryID); err != nil {
			if apperr.IsNotFound(err) {
				return invalid
			}
			return err
		}
		current, err := tx.ListCategorySlots(ctx, buildID, categoryID)
		if err != nil {
			return err
		}
		if len(current) != len(orderedSlotIDs) {
			return invalid
		}
		inCategory := make(map[string]bool, len(current))
		for _, sl := range current {
			inCategory[sl.ID] = true
		}
		seen := make(map[string]bool, len(orderedSlotIDs))
		for _, id := range orderedSlotIDs {
			if !inCategory[id] || seen[id] {
				return invalid
			}
			seen[id] = true
		}

		for i, id := range orderedSlotIDs {
			if err := tx.SetSlotSortOrder(ctx, buildID, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.log.Debug("reordered slots",
		zap.String("build_id", buildID),
		zap.String("category_id", categoryID),
		zap.Int("slots", len(orderedSlotIDs)))
	return nil
}

// AddSlot appends a slot for componentKey at the end of a category. The
// key's group must be the category's name.
func (m *Mutator) AddSlot(ctx context.Context, buildID, categoryID, componentKey string) (*models.Slot, error) {
	group, ok := taxonomy.GroupOf(componentKey)
	if !ok {
		return nil, apperr.Invalid("Invalid component %q", componentKey)
	}
	if err := m.builder.EnsureLayout(ctx, buildID); err != nil {
		return nil, err
	}

	var sl *models.Slot
	err := m.repo.WithTx(ctx, func(tx store.Repository) error {
		category, err := tx.GetCategory(ctx, buildID, categoryID)
		if err != nil {
			return err
		}
		if category.Name != group {
			return apperr.Invalid("Component %q belongs to %s, not %s", componentKey, group, category.Name)
		}
		sortOrder, err := tx.NextSlotSortOrder(ctx, buildID, categoryID)
		if err != nil {
			return err
		}
		sl = &models.Slot{
			BuildID:      buildID,
			CategoryID:   categoryID,
			ComponentKey: componentKey,
			SortOrder:    sortOrder,
		}
		return tx.CreateSlot(ctx, sl)
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("added slot",
		zap.String("build_id", buildID),
		zap.String("slot_id", sl.ID),
		zap.String("component", componentKey))
	return sl, nil
}

// RemoveSlot deletes a slot and every build part attached to it. It reports
// false when the slot does not exist under the build.
func (m *Mutator) RemoveSlot(ctx context.Context, buildID, slotID string) (bool, error) {
	var (
		removed bool
		parts   int64
	)
	err := m.repo.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetSlot(ctx, buildID, slotID); err != nil {
			if apperr.IsNotFound(err) {
				return nil
			}
			return err
		}
		n, err := tx.DeleteSlotBuildParts(ctx, buildID, slotID)
		if err != nil {
			return err
		}
		parts = n
		removed, err = tx.DeleteSlot(ctx, buildID, slotID)
		return err
	})
	if err != nil {
		return false, err
	}
	if removed {
		m.log.Debug("removed slot",
			zap.String("build_id", buildID),
			zap.String("slot_id", slotID),
			zap.Int64("build_parts", parts))
	}
	return removed, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
