package taxonomy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents(t *testing.T) {
	defs := Components()
	assert.Len(t, defs, 29)

	seen := map[string]bool{}
	for _, d := range defs {
		assert.False(t, seen[d.Key], "duplicate key %s", d.Key)
		seen[d.Key] = true
		assert.Contains(t, Groups(), d.Group, "key %s", d.Key)
		assert.NotEmpty(t, d.Label)
	}

	defs[0].Key = "mutated"
	assert.Equal(t, "frame", Components()[0].Key, "Components must return a copy")
}

func TestGroupsOrder(t *testing.T) {
	want := []string{"Frameset", "Drivetrain", "Braking & control", "Wheelset", "Cockpit"}
	if diff := cmp.Diff(want, Groups()); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysInGroup(t *testing.T) {
	want := []string{"crankset", "chainrings", "bottom_bracket", "chain", "cassette", "front_derailleur", "rear_derailleur"}
	if diff := cmp.Diff(want, KeysInGroup(GroupDrivetrain)); diff != "" {
		t.Errorf("KeysInGroup(Drivetrain) mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, KeysInGroup("Electronics"))
}

func TestLookups(t *testing.T) {
	tests := []struct {
		key        string
		group      string
		recognized bool
		fixed      bool
		bucket     bool
	}{
		{key: "saddle", group: GroupCockpit, recognized: true, fixed: true},
		{key: "brake_rotors", group: GroupBraking, recognized: true, fixed: true},
		{key: "custom_drivetrain", group: GroupDrivetrain, recognized: true, bucket: true},
		{key: "custom_braking", group: GroupBraking, recognized: true, bucket: true},
		{key: "motor", recognized: false},
		{key: "", recognized: false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.recognized, IsRecognized(tt.key))
			assert.Equal(t, tt.fixed, IsComponentKey(tt.key))
			assert.Equal(t, tt.bucket, IsCustomBucket(tt.key))
			g, ok := GroupOf(tt.key)
			assert.Equal(t, tt.recognized, ok)
			assert.Equal(t, tt.group, g)
		})
	}
}

func TestCustomBucketKey(t *testing.T) {
	for _, g := range Groups() {
		k, ok := CustomBucketKey(g)
		require.True(t, ok, "group %s has no custom bucket", g)
		got, ok := GroupOf(k)
		require.True(t, ok)
		assert.Equal(t, g, got)
	}
	_, ok := CustomBucketKey("Electronics")
	assert.False(t, ok)
}

func TestClusters(t *testing.T) {
	clusters := Clusters(Components())
	assert.Len(t, clusters, 28, "crankset and chainrings fold into one cluster")

	var crank *Cluster
	for i := range clusters {
		if clusters[i].CompositeGroup == CompositeCrankset {
			require.Nil(t, crank, "crankset cluster must appear once")
			crank = &clusters[i]
		}
	}
	require.NotNil(t, crank)
	assert.Equal(t, "Crankset", crank.Label)
	assert.Equal(t, GroupDrivetrain, crank.Group)

	var keys []string
	for _, c := range crank.Components {
		keys = append(keys, c.Key)
	}
	if diff := cmp.Diff([]string{"crankset", "chainrings"}, keys); diff != "" {
		t.Errorf("crankset cluster mismatch (-want +got):\n%s", diff)
	}
}

func TestClustersSplitNonAdjacent(t *testing.T) {
	defs := []ComponentDef{
		{Key: "a", Label: "A", Group: "G", CompositeGroup: "combo"},
		{Key: "b", Label: "B", Group: "G"},
		{Key: "c", Label: "C", Group: "G", CompositeGroup: "combo"},
	}
	clusters := Clusters(defs)
	require.Len(t, clusters, 3)
	assert.Equal(t, "combo", clusters[0].Label)
	assert.Equal(t, "B", clusters[1].Label)
	assert.Equal(t, "combo", clusters[2].CompositeGroup)
}

func TestPartSubTypes(t *testing.T) {
	assert.True(t, ValidCranksetType("crankset", "crank_arms"))
	assert.True(t, ValidCranksetType("chainrings", "chainrings"))
	assert.False(t, ValidCranksetType("chain", "crank_arms"))
	assert.False(t, ValidCranksetType("crankset", "spider"))

	assert.True(t, ValidHandlebarsStemType("handlebars_stem", "stem"))
	assert.False(t, ValidHandlebarsStemType("saddle", "stem"))
}
