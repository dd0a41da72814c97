package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikebuild/apperr"
	"bikebuild/db/dbtest"
	"bikebuild/models"
)

// newTestStore returns a store on a fresh SQLite database whose clock ticks
// one millisecond per call, so creation order is observable.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(dbtest.Open(t))
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return s
}

func strPtr(s string) *string { return &s }

func createTestBuild(t *testing.T, s *Store, userID *string) *models.Build {
	t.Helper()
	b := &models.Build{UserID: userID, Name: "Test build", BikeType: "road"}
	require.NoError(t, s.CreateBuild(context.Background(), b))
	return b
}

func TestBuildCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := createTestBuild(t, s, nil)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, b.CreatedAt, b.UpdatedAt)

	got, err := s.GetBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test build", got.Name)
	assert.Nil(t, got.UserID)

	updated, err := s.UpdateBuild(ctx, b.ID, strPtr("Gravel rig"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Gravel rig", updated.Name)
	assert.Equal(t, "road", updated.BikeType)
	assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))

	deleted, err := s.DeleteBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.GetBuild(ctx, b.ID)
	assert.True(t, apperr.IsNotFound(err))

	deleted, err = s.DeleteBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUpdateBuildNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateBuild(context.Background(), "missing", strPtr("x"), nil)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListBuildsByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	anon1 := createTestBuild(t, s, nil)
	anon2 := createTestBuild(t, s, nil)
	alice := createTestBuild(t, s, strPtr("alice"))

	builds, err := s.ListBuilds(ctx, nil)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, anon2.ID, builds[0].ID, "most recently updated first")
	assert.Equal(t, anon1.ID, builds[1].ID)

	builds, err = s.ListBuilds(ctx, strPtr("alice"))
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, alice.ID, builds[0].ID)

	builds, err = s.ListBuilds(ctx, strPtr("bob"))
	require.NoError(t, err)
	assert.NotNil(t, builds)
	assert.Empty(t, builds)
}

func TestPartCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	weight := 240
	p := &models.Part{
		Name:              "Chainring 42T",
		Component:         "chainrings",
		WeightG:           &weight,
		CompatibilityTags: []string{"1x", "110bcd"},
	}
	require.NoError(t, s.CreatePart(ctx, p))
	plain := &models.Part{Name: "Saddle", Component: "saddle"}
	require.NoError(t, s.CreatePart(ctx, plain))

	got, err := s.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1x", "110bcd"}, got.CompatibilityTags)
	require.NotNil(t, got.WeightG)
	assert.Equal(t, 240, *got.WeightG)

	got, err = s.GetPart(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.CompatibilityTags)
	assert.Nil(t, got.WeightG)

	list, err := s.ListParts(ctx, "chainrings")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	list, err = s.ListParts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	byID, err := s.GetPartsByIDs(ctx, []string{p.ID, plain.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Contains(t, byID, p.ID)

	p.Name = "Chainring 40T"
	p.CompatibilityTags = nil
	require.NoError(t, s.UpdatePart(ctx, p))
	got, err = s.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chainring 40T", got.Name)
	assert.Empty(t, got.CompatibilityTags)

	err = s.UpdatePart(ctx, &models.Part{ID: "missing", Name: "x", Component: "saddle"})
	assert.True(t, apperr.IsNotFound(err))

	deleted, err := s.DeletePart(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.GetPart(ctx, p.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestScaffoldRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := createTestBuild(t, s, nil)

	has, err := s.HasCategories(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, has)

	second := &models.Category{BuildID: b.ID, Name: "Cockpit", SortOrder: 1}
	first := &models.Category{BuildID: b.ID, Name: "Wheelset", SortOrder: 0}
	require.NoError(t, s.CreateCategory(ctx, second))
	require.NoError(t, s.CreateCategory(ctx, first))

	has, err = s.HasCategories(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, has)

	cats, err := s.ListCategories(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Wheelset", cats[0].Name)

	// saddle appears in both categories; the first category wins.
	cockpitSaddle := &models.Slot{BuildID: b.ID, CategoryID: second.ID, ComponentKey: "saddle", SortOrder: 0}
	wheelSaddle := &models.Slot{BuildID: b.ID, CategoryID: first.ID, ComponentKey: "saddle", SortOrder: 5}
	require.NoError(t, s.CreateSlot(ctx, cockpitSaddle))
	require.NoError(t, s.CreateSlot(ctx, wheelSaddle))

	found, err := s.FindSlotByComponent(ctx, b.ID, "saddle")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, wheelSaddle.ID, found.ID)

	found, err = s.FindSlotByComponent(ctx, b.ID, "tyres")
	require.NoError(t, err)
	assert.Nil(t, found)

	next, err := s.NextSlotSortOrder(ctx, b.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, next)

	next, err = s.NextGroupSortOrder(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	g := &models.Group{BuildID: b.ID, Name: "Seat stuff", CategoryID: &second.ID}
	require.NoError(t, s.CreateGroup(ctx, g))
	require.NoError(t, s.SetSlotsGroup(ctx, b.ID, []string{cockpitSaddle.ID, wheelSaddle.ID}, g.ID))

	slots, err := s.ListSlotsByIDs(ctx, b.ID, []string{cockpitSaddle.ID, wheelSaddle.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, sl := range slots {
		require.NotNil(t, sl.GroupID)
		assert.Equal(t, g.ID, *sl.GroupID)
	}

	require.NoError(t, s.SetSlotSortOrder(ctx, b.ID, wheelSaddle.ID, 0))
	got, err := s.GetSlot(ctx, b.ID, wheelSaddle.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SortOrder)

	deleted, err := s.DeleteSlot(ctx, b.ID, wheelSaddle.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.GetSlot(ctx, b.ID, wheelSaddle.ID)
	assert.True(t, apperr.IsNotFound(err))

	all, err := s.ListSlots(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRowsAreScopedToBuild(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createTestBuild(t, s, nil)
	other := createTestBuild(t, s, nil)

	c := &models.Category{BuildID: a.ID, Name: "Frameset"}
	require.NoError(t, s.CreateCategory(ctx, c))
	sl := &models.Slot{BuildID: a.ID, CategoryID: c.ID, ComponentKey: "frame"}
	require.NoError(t, s.CreateSlot(ctx, sl))

	_, err := s.GetCategory(ctx, other.ID, c.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = s.GetSlot(ctx, other.ID, sl.ID)
	assert.True(t, apperr.IsNotFound(err))

	deleted, err := s.DeleteSlot(ctx, other.ID, sl.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestBuildPartRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := createTestBuild(t, s, nil)

	c := &models.Category{BuildID: b.ID, Name: "Wheelset"}
	require.NoError(t, s.CreateCategory(ctx, c))
	sl := &models.Slot{BuildID: b.ID, CategoryID: c.ID, ComponentKey: "tyres"}
	require.NoError(t, s.CreateSlot(ctx, sl))

	legacy := &models.BuildPart{BuildID: b.ID, Component: "saddle", Quantity: 1}
	require.NoError(t, s.CreateBuildPart(ctx, legacy))
	linked := &models.BuildPart{BuildID: b.ID, BuildSlotID: &sl.ID, Component: "tyres", Quantity: 2,
		CustomName: strPtr("Tubeless 40c")}
	require.NoError(t, s.CreateBuildPart(ctx, linked))

	list, err := s.ListBuildParts(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, legacy.ID, list[0].ID)
	assert.Equal(t, linked.ID, list[1].ID)

	slotless, err := s.ListSlotlessBuildParts(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, slotless, 1)
	assert.Equal(t, legacy.ID, slotless[0].ID)

	updated, err := s.UpdateBuildPart(ctx, b.ID, linked.ID, models.BuildPartPatch{
		Quantity:   models.Some(4),
		CustomName: models.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.Nil(t, updated.CustomName)
	assert.Equal(t, "tyres", updated.Component)
	require.NotNil(t, updated.BuildSlotID)
	assert.Equal(t, sl.ID, *updated.BuildSlotID)

	unchanged, err := s.UpdateBuildPart(ctx, b.ID, linked.ID, models.BuildPartPatch{})
	require.NoError(t, err)
	assert.Equal(t, 4, unchanged.Quantity)

	_, err = s.UpdateBuildPart(ctx, b.ID, "missing", models.BuildPartPatch{Quantity: models.Some(1)})
	assert.True(t, apperr.IsNotFound(err))

	n, err := s.DeleteSlotBuildParts(ctx, b.ID, sl.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	deleted, err := s.DeleteBuildPart(ctx, b.ID, legacy.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteBuildPart(ctx, b.ID, legacy.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var createdID string
	err := s.WithTx(ctx, func(tx Repository) error {
		b := &models.Build{Name: "Doomed", BikeType: "road"}
		if err := tx.CreateBuild(ctx, b); err != nil {
			return err
		}
		createdID = b.ID
		// nested calls join the outer transaction
		return tx.WithTx(ctx, func(inner Repository) error {
			if _, err := inner.GetBuild(ctx, createdID); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetBuild(ctx, createdID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &models.Build{Name: "Kept", BikeType: "gravel"}
	require.NoError(t, s.WithTx(ctx, func(tx Repository) error {
		return tx.CreateBuild(ctx, b)
	}))

	got, err := s.GetBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "gravel", got.BikeType)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
