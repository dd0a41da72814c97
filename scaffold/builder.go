// Package scaffold materializes and evolves a build's component layout:
// categories, the slots inside them and user-defined slot groups.
package scaffold

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"bikebuild/models"
	"bikebuild/store"
	"bikebuild/taxonomy"
)

// Builder creates the default scaffold of a build on first use.
type Builder struct {
	repo      store.Repository
	log       *zap.Logger
	serialize bool
	flight    singleflight.Group
}

// NewBuilder returns a Builder. With serialize set, concurrent EnsureLayout
// calls for the same build in this process share one materialization.
func NewBuilder(repo store.Repository, log *zap.Logger, serialize bool) *Builder {
	return &Builder{repo: repo, log: log, serialize: serialize}
}

// EnsureLayout materializes the default categories and slots of buildID if
// it has none yet, then links legacy build parts to their slots. It is a
// no-op for a build that already has a scaffold.
func (b *Builder) EnsureLayout(ctx context.Context, buildID string) error {
	has, err := b.repo.HasCategories(ctx, buildID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if !b.serialize {
		return b.materialize(ctx, buildID)
	}
	// the shared call outlives a cancelled first caller so joiners are not
	// failed with its context error
	shared := context.WithoutCancel(ctx)
	_, err, _ = b.flight.Do(buildID, func() (any, error) {
		return nil, b.materialize(shared, buildID)
	})
	return err
}

func (b *Builder) materialize(ctx context.Context, buildID string) error {
	var (
		created    bool
		slotCount  int
		backfilled int
		unmatched  int
	)
	err := b.repo.WithTx(ctx, func(tx store.Repository) error {
		// re-check under the transaction; another caller may have won
		has, err := tx.HasCategories(ctx, buildID)
		if err != nil || has {
			return err
		}
		if _, err := tx.GetBuild(ctx, buildID); err != nil {
			return err
		}

		categoryIDs := make(map[string]string)
		for i, group := range taxonomy.Groups() {
			c := &models.Category{BuildID: buildID, Name: group, SortOrder: i}
			if err := tx.CreateCategory(ctx, c); err != nil {
				return err
			}
			categoryIDs[group] = c.ID
		}

		slotByKey := make(map[string]string)
		nextOrder := make(map[string]int)
		addSlot := func(group, key string) error {
			categoryID, ok := categoryIDs[group]
			if !ok {
				return nil
			}
			sl := &models.Slot{
				BuildID:      buildID,
				CategoryID:   categoryID,
				ComponentKey: key,
				SortOrder:    nextOrder[group],
			}
			if err := tx.CreateSlot(ctx, sl); err != nil {
				return err
			}
			nextOrder[group]++
			if _, dup := slotByKey[key]; !dup {
				slotByKey[key] = sl.ID
			}
			slotCount++
			return nil
		}
		for _, def := range taxonomy.Components() {
			if err := addSlot(def.Group, def.Key); err != nil {
				return err
			}
		}
		for _, group := range taxonomy.Groups() {
			key, _ := taxonomy.CustomBucketKey(group)
			if err := addSlot(group, key); err != nil {
				return err
			}
		}

		legacy, err := tx.ListSlotlessBuildParts(ctx, buildID)
		if err != nil {
			return err
		}
		for _, bp := range legacy {
			slotID, ok := slotByKey[bp.Component]
			if !ok {
				unmatched++
				continue
			}
			if err := tx.SetBuildPartSlot(ctx, buildID, bp.ID, slotID); err != nil {
				return err
			}
			backfilled++
		}
		created = true
		return nil
	})
	if err != nil {
		return err
	}
	if created {
		b.log.Info("materialized build scaffold",
			zap.String("build_id", buildID),
			zap.Int("categories", len(taxonomy.Groups())),
			zap.Int("slots", slotCount),
			zap.Int("backfilled", backfilled),
			zap.Int("unmatched", unmatched))
	}
	return nil
}

// GetScaffold returns the category tree and the groups of buildID,
// materializing the default layout first if needed.
func (b *Builder) GetScaffold(ctx context.Context, buildID string) (*models.Scaffold, error) {
	if err := b.EnsureLayout(ctx, buildID); err != nil {
		return nil, err
	}

	categories, err := b.repo.ListCategories(ctx, buildID)
	if err != nil {
		return nil, err
	}
	groups, err := b.repo.ListGroups(ctx, buildID)
	if err != nil {
		return nil, err
	}
	slots, err := b.repo.ListSlots(ctx, buildID)
	if err != nil {
		return nil, err
	}

	groupRefs := make(map[string]*models.GroupRef, len(groups))
	for _, g := range groups {
		groupRefs[g.ID] = &models.GroupRef{ID: g.ID, Name: g.Name}
	}
	byCategory := make(map[string][]models.ScaffoldSlot, len(categories))
	for _, sl := range slots {
		ss := models.ScaffoldSlot{
			ID:           sl.ID,
			ComponentKey: sl.ComponentKey,
			SortOrder:    sl.SortOrder,
			GroupID:      sl.GroupID,
		}
		if sl.GroupID != nil {
			ss.Group = groupRefs[*sl.GroupID]
		}
		byCategory[sl.CategoryID] = append(byCategory[sl.CategoryID], ss)
	}

	out := &models.Scaffold{
		Categories: make([]models.ScaffoldCategory, 0, len(categories)),
		Groups:     groups,
	}
	for _, c := range categories {
		catSlots := byCategory[c.ID]
		if catSlots == nil {
			catSlots = []models.ScaffoldSlot{}
		}
		out.Categories = append(out.Categories, models.ScaffoldCategory{
			ID:        c.ID,
			Name:      c.Name,
			SortOrder: c.SortOrder,
			Slots:     catSlots,
		})
	}
	return out, nil
}
