// Package buildparts attaches catalog or custom parts to the slots of a
// build.
package buildparts

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bikebuild/apperr"
	"bikebuild/models"
	"bikebuild/store"
	"bikebuild/taxonomy"
)

const errIdentity = "Invalid component or provide partId or customName"

// LayoutEnsurer materializes a build's scaffold on demand.
type LayoutEnsurer interface {
	EnsureLayout(ctx context.Context, buildID string) error
}

// PartResolver batch-loads catalog parts by id.
type PartResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]*models.Part, error)
}

// AddInput is the body of an attachment request. Exactly one of
// BuildSlotID and Component addresses the position (BuildSlotID wins when
// both are given); PartID or CustomName identifies the part.
type AddInput struct {
	BuildSlotID    *string  `json:"buildSlotId"`
	Component      *string  `json:"component"`
	PartID         *string  `json:"partId"`
	Quantity       *int     `json:"quantity"`
	Notes          *string  `json:"notes"`
	ComponentLabel *string  `json:"componentLabel"`
	CustomName     *string  `json:"customName"`
	CustomWeightG  *int     `json:"customWeightG"`
	CustomPrice    *float64 `json:"customPrice"`
	CustomCurrency *string  `json:"customCurrency"`
}

// target is where an attachment is addressed: a slot or a bare component key.
type target interface {
	isTarget()
}

type bySlot struct{ slotID string }

type byComponent struct{ key string }

func (bySlot) isTarget()      {}
func (byComponent) isTarget() {}

func (in AddInput) target() (target, bool) {
	if id := deref(in.BuildSlotID); id != "" {
		return bySlot{slotID: id}, true
	}
	if key := deref(in.Component); key != "" {
		return byComponent{key: key}, true
	}
	return nil, false
}

// Service implements build-part attachment.
type Service struct {
	repo   store.Repository
	layout LayoutEnsurer
	parts  PartResolver
	log    *zap.Logger
}

func NewService(repo store.Repository, layout LayoutEnsurer, parts PartResolver, log *zap.Logger) *Service {
	return &Service{repo: repo, layout: layout, parts: parts, log: log}
}

// Add creates a build part. A slot target must belong to the build and
// fixes the component key. A component target materializes the scaffold
// and links the row to the first slot holding that key, or leaves it
// slotless when there is none.
func (s *Service) Add(ctx context.Context, buildID string, in AddInput) (*models.BuildPartWithPart, error) {
	tgt, ok := in.target()
	if !ok {
		return nil, apperr.Invalid(errIdentity)
	}
	partID := nonEmpty(in.PartID)
	customName := nonEmpty(in.CustomName)
	if partID == nil && customName == nil {
		return nil, apperr.Invalid(errIdentity)
	}
	quantity := 1
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, apperr.Invalid("quantity must be at least 1")
		}
		quantity = *in.Quantity
	}
	if c, ok := tgt.(byComponent); ok {
		if !taxonomy.IsRecognized(c.key) {
			return nil, apperr.Invalid(errIdentity)
		}
		if err := s.layout.EnsureLayout(ctx, buildID); err != nil {
			return nil, err
		}
	}

	out := &models.BuildPartWithPart{}
	err := s.repo.WithTx(ctx, func(tx store.Repository) error {
		slotID, component, err := resolveTarget(ctx, tx, buildID, tgt)
		if err != nil {
			return err
		}
		if partID != nil {
			p, err := tx.GetPart(ctx, *partID)
			if err != nil {
				if apperr.IsNotFound(err) {
					return apperr.Invalid("Unknown partId %s", *partID)
				}
				return err
			}
			out.Part = p
		}

		out.BuildPart = models.BuildPart{
			BuildID:        buildID,
			BuildSlotID:    slotID,
			Component:      component,
			PartID:         partID,
			Quantity:       quantity,
			Notes:          in.Notes,
			ComponentLabel: nonEmpty(in.ComponentLabel),
			CustomName:     customName,
			CustomWeightG:  in.CustomWeightG,
			CustomPrice:    in.CustomPrice,
			CustomCurrency: in.CustomCurrency,
		}
		return tx.CreateBuildPart(ctx, &out.BuildPart)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("added build part",
		zap.String("build_id", buildID),
		zap.String("build_part_id", out.ID),
		zap.String("component", out.Component),
		zap.Bool("slotted", out.BuildSlotID != nil))
	return out, nil
}

// resolveTarget turns a target into the canonical slot id and component key
// persisted on the row.
func resolveTarget(ctx context.Context, tx store.Repository, buildID string, tgt target) (*string, string, error) {
	switch t := tgt.(type) {
	case bySlot:
		sl, err := tx.GetSlot(ctx, buildID, t.slotID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil, "", apperr.Invalid(errIdentity)
			}
			return nil, "", err
		}
		return &sl.ID, sl.ComponentKey, nil
	case byComponent:
		sl, err := tx.FindSlotByComponent(ctx, buildID, t.key)
		if err != nil {
			return nil, "", err
		}
		if sl == nil {
			return nil, t.key, nil
		}
		return &sl.ID, t.key, nil
	default:
		return nil, "", apperr.Invalid(errIdentity)
	}
}

// Update applies the Set fields of patch. Slot, component and catalog part
// cannot be changed. A blank customName is stored as null, and clearing it
// is only allowed on a row that references a catalog part.
func (s *Service) Update(ctx context.Context, buildID, rowID string, patch models.BuildPartPatch) (*models.BuildPart, error) {
	if patch.Quantity.Set && (patch.Quantity.Value == nil || *patch.Quantity.Value < 1) {
		return nil, apperr.Invalid("quantity must be at least 1")
	}
	if patch.Empty() {
		return s.repo.GetBuildPart(ctx, buildID, rowID)
	}
	if !patch.CustomName.Set {
		return s.repo.UpdateBuildPart(ctx, buildID, rowID, patch)
	}

	if name := nonEmpty(patch.CustomName.Value); name != nil {
		patch.CustomName = models.Some(strings.TrimSpace(*name))
	} else {
		patch.CustomName = models.Null[string]()
	}
	var out *models.BuildPart
	err := s.repo.WithTx(ctx, func(tx store.Repository) error {
		if patch.CustomName.Value == nil {
			current, err := tx.GetBuildPart(ctx, buildID, rowID)
			if err != nil {
				return err
			}
			if current.PartID == nil {
				return apperr.Invalid(errIdentity)
			}
		}
		updated, err := tx.UpdateBuildPart(ctx, buildID, rowID, patch)
		out = updated
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes a build part, reporting whether it existed.
func (s *Service) Remove(ctx context.Context, buildID, rowID string) (bool, error) {
	return s.repo.DeleteBuildPart(ctx, buildID, rowID)
}

// List returns the build's parts joined with their catalog parts. Distinct
// part ids are resolved in one batch.
func (s *Service) List(ctx context.Context, buildID string) ([]models.BuildPartWithPart, error) {
	rows, err := s.repo.ListBuildParts(ctx, buildID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, r := range rows {
		if r.PartID != nil {
			ids = append(ids, *r.PartID)
		}
	}
	parts, err := s.parts.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.BuildPartWithPart, len(rows))
	for i, r := range rows {
		out[i].BuildPart = r
		if r.PartID != nil {
			out[i].Part = parts[*r.PartID]
		}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// nonEmpty returns nil for a nil or blank string.
func nonEmpty(s *string) *string {
	if deref(s) == "" {
		return nil
	}
	return s
}
