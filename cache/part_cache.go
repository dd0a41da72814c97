// Package cache keeps catalog parts in memory so build part listings can be
// joined without a query per row.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bikebuild/models"
)

// PartSource is the subset of the store the cache reads from.
type PartSource interface {
	ListParts(ctx context.Context, component string) ([]*models.Part, error)
	GetPartsByIDs(ctx context.Context, ids []string) (map[string]*models.Part, error)
}

// PartCache holds catalog parts by id and by component key. Reads that miss
// fall through to the source in one batch. After Warm, the cache mirrors the
// whole catalog as long as every part write goes through Set and Delete.
type PartCache struct {
	mu          sync.RWMutex
	source      PartSource
	byID        map[string]*models.Part
	byComponent map[string]map[string]struct{}
	warm        bool
}

// NewPartCache returns an empty cache reading through to source.
func NewPartCache(source PartSource) *PartCache {
	return &PartCache{
		source:      source,
		byID:        make(map[string]*models.Part),
		byComponent: make(map[string]map[string]struct{}),
	}
}

// Warm replaces the cache contents with every part in the source and returns
// how many were loaded.
func (c *PartCache) Warm(ctx context.Context) (int, error) {
	parts, err := c.source.ListParts(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list parts for cache warm-up: %w", err)
	}

	byID := make(map[string]*models.Part, len(parts))
	byComponent := make(map[string]map[string]struct{})
	for _, p := range parts {
		cp := clonePart(p)
		byID[cp.ID] = cp
		index(byComponent, cp)
	}

	c.mu.Lock()
	c.byID = byID
	c.byComponent = byComponent
	c.warm = true
	c.mu.Unlock()
	return len(parts), nil
}

// Set adds or replaces a part.
func (c *PartCache) Set(p *models.Part) {
	if p == nil {
		return
	}
	cp := clonePart(p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.byID[cp.ID]; ok && old.Component != cp.Component {
		unindex(c.byComponent, old)
	}
	c.byID[cp.ID] = cp
	index(c.byComponent, cp)
}

// Delete evicts a part. Unknown ids are ignored.
func (c *PartCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)
	unindex(c.byComponent, old)
}

// GetByID returns a copy of a cached part without consulting the source.
func (c *PartCache) GetByID(id string) (*models.Part, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return clonePart(p), true
}

// List returns copies of the cached parts for a component key, or of every
// cached part when component is empty, newest first like the store lists
// them. complete is false until a Warm has succeeded; before that the
// result only holds parts that happened to be cached.
func (c *PartCache) List(component string) (parts []*models.Part, complete bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if component == "" {
		parts = make([]*models.Part, 0, len(c.byID))
		for _, p := range c.byID {
			parts = append(parts, clonePart(p))
		}
	} else {
		ids := c.byComponent[component]
		parts = make([]*models.Part, 0, len(ids))
		for id := range ids {
			parts = append(parts, clonePart(c.byID[id]))
		}
	}
	sort.Slice(parts, func(i, j int) bool {
		if !parts[i].CreatedAt.Equal(parts[j].CreatedAt) {
			return parts[i].CreatedAt.After(parts[j].CreatedAt)
		}
		return parts[i].ID > parts[j].ID
	})
	return parts, c.warm
}

// Resolve returns the parts for ids. Cache misses are fetched from the
// source in a single call and remembered; ids that exist nowhere are absent
// from the result.
func (c *PartCache) Resolve(ctx context.Context, ids []string) (map[string]*models.Part, error) {
	out := make(map[string]*models.Part, len(ids))
	var missing []string
	queued := make(map[string]bool)

	c.mu.RLock()
	for _, id := range ids {
		if p, ok := c.byID[id]; ok {
			out[id] = clonePart(p)
		} else if !queued[id] {
			queued[id] = true
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.source.GetPartsByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %d parts: %w", len(missing), err)
	}
	for id, p := range fetched {
		c.Set(p)
		out[id] = clonePart(p)
	}
	return out, nil
}

func index(byComponent map[string]map[string]struct{}, p *models.Part) {
	ids, ok := byComponent[p.Component]
	if !ok {
		ids = make(map[string]struct{})
		byComponent[p.Component] = ids
	}
	ids[p.ID] = struct{}{}
}

func unindex(byComponent map[string]map[string]struct{}, p *models.Part) {
	ids, ok := byComponent[p.Component]
	if !ok {
		return
	}
	delete(ids, p.ID)
	if len(ids) == 0 {
		delete(byComponent, p.Component)
	}
}

// clonePart copies p deeply enough that callers cannot mutate cached state.
func clonePart(p *models.Part) *models.Part {
	cp := *p
	if p.CompatibilityTags != nil {
		cp.CompatibilityTags = make([]string, len(p.CompatibilityTags))
		copy(cp.CompatibilityTags, p.CompatibilityTags)
	}
	return &cp
}
