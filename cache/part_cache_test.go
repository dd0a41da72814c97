package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"bikebuild/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockPartSource is an in-memory PartSource that counts batch lookups.
type MockPartSource struct {
	mu           sync.Mutex
	parts        map[string]*models.Part
	listErr      error
	batchCalls   int
	lastBatchIDs []string
}

func newMockSource(parts ...*models.Part) *MockPartSource {
	m := &MockPartSource{parts: make(map[string]*models.Part)}
	for _, p := range parts {
		m.parts[p.ID] = p
	}
	return m
}

func (m *MockPartSource) ListParts(_ context.Context, component string) ([]*models.Part, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Part
	for _, p := range m.parts {
		if component == "" || p.Component == component {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPartSource) GetPartsByIDs(_ context.Context, ids []string) (map[string]*models.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.lastBatchIDs = append([]string(nil), ids...)
	out := make(map[string]*models.Part)
	for _, id := range ids {
		if p, ok := m.parts[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// cached lists what the cache holds regardless of warm-up.
func cached(c *PartCache, component string) []*models.Part {
	parts, _ := c.List(component)
	return parts
}

var (
	saddle  = &models.Part{ID: "p1", Name: "Saddle", Component: "saddle", CompatibilityTags: []string{"7mm"}}
	tyre    = &models.Part{ID: "p2", Name: "Tyre 32c", Component: "tyres"}
	tyreAlt = &models.Part{ID: "p3", Name: "Tyre 40c", Component: "tyres"}
)

func TestWarm(t *testing.T) {
	c := NewPartCache(newMockSource(saddle, tyre, tyreAlt))
	n, err := c.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, complete := c.List("")
	assert.True(t, complete)
	assert.Len(t, all, 3)

	tyres, _ := c.List("tyres")
	require.Len(t, tyres, 2)
	assert.Equal(t, "p3", tyres[0].ID)
	assert.Equal(t, "p2", tyres[1].ID)
	stems, complete := c.List("stem")
	assert.True(t, complete)
	assert.Empty(t, stems)
}

func TestListNewestFirst(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000).UTC()
	older := &models.Part{ID: "p9", Name: "Old tyre", Component: "tyres", CreatedAt: base}
	newer := &models.Part{ID: "p1", Name: "New tyre", Component: "tyres", CreatedAt: base.Add(time.Millisecond)}
	c := NewPartCache(newMockSource(older, newer))

	parts, complete := c.List("tyres")
	assert.False(t, complete)
	assert.Empty(t, parts)

	_, err := c.Warm(context.Background())
	require.NoError(t, err)
	parts, complete = c.List("tyres")
	assert.True(t, complete)
	require.Len(t, parts, 2)
	assert.Equal(t, "p1", parts[0].ID)
	assert.Equal(t, "p9", parts[1].ID)
}

func TestWarmError(t *testing.T) {
	src := newMockSource()
	src.listErr = errors.New("db down")
	c := NewPartCache(src)
	_, err := c.Warm(context.Background())
	assert.ErrorIs(t, err, src.listErr)
	_, complete := c.List("")
	assert.False(t, complete)
}

func TestCopySemantics(t *testing.T) {
	c := NewPartCache(newMockSource())
	c.Set(saddle)

	got, ok := c.GetByID("p1")
	require.True(t, ok)
	got.Name = "mutated"
	got.CompatibilityTags[0] = "mutated"

	again, _ := c.GetByID("p1")
	assert.Equal(t, "Saddle", again.Name)
	assert.Equal(t, []string{"7mm"}, again.CompatibilityTags)
	assert.Equal(t, "7mm", saddle.CompatibilityTags[0])
}

func TestSetMovesComponentIndex(t *testing.T) {
	c := NewPartCache(newMockSource())
	c.Set(tyre)

	moved := *tyre
	moved.Component = "inner_tubes"
	c.Set(&moved)

	assert.Empty(t, cached(c, "tyres"))
	require.Len(t, cached(c, "inner_tubes"), 1)
	assert.Len(t, cached(c, ""), 1)

	c.Set(nil)
	assert.Len(t, cached(c, ""), 1)
}

func TestDelete(t *testing.T) {
	c := NewPartCache(newMockSource())
	c.Set(tyre)
	c.Set(tyreAlt)

	c.Delete("p2")
	_, ok := c.GetByID("p2")
	assert.False(t, ok)
	require.Len(t, cached(c, "tyres"), 1)

	c.Delete("p3")
	c.Delete("unknown")
	assert.Empty(t, cached(c, "tyres"))
	assert.Empty(t, cached(c, ""))
}

func TestResolveBatchesMisses(t *testing.T) {
	src := newMockSource(saddle, tyre, tyreAlt)
	c := NewPartCache(src)
	c.Set(saddle)

	got, err := c.Resolve(context.Background(), []string{"p1", "p2", "p2", "gone", "p3"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.NotContains(t, got, "gone")
	assert.Equal(t, 1, src.batchCalls)
	assert.Equal(t, []string{"p2", "gone", "p3"}, src.lastBatchIDs)

	// fetched parts are now cached
	_, err = c.Resolve(context.Background(), []string{"p2", "p3"})
	require.NoError(t, err)
	assert.Equal(t, 1, src.batchCalls)
}

func TestResolveEmpty(t *testing.T) {
	src := newMockSource()
	c := NewPartCache(src)
	got, err := c.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, src.batchCalls)
}

func TestConcurrentAccess(t *testing.T) {
	src := newMockSource(saddle, tyre, tyreAlt)
	c := NewPartCache(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				c.Set(tyre)
			case 1:
				c.Delete("p2")
			case 2:
				_, _ = c.Resolve(context.Background(), []string{"p1", "p3"})
			default:
				_, _ = c.List("tyres")
			}
		}(i)
	}
	wg.Wait()

	_, ok := c.GetByID("p1")
	assert.True(t, ok)
}
