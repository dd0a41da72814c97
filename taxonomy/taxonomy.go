// Package taxonomy holds the fixed bike component catalog: component keys,
// their display labels, the group (build section) each belongs to and the
// reserved custom bucket key of every group.
//
// The data is immutable; all exported functions return copies.
package taxonomy

// Component groups in display order.
const (
	GroupFrameset   = "Frameset"
	GroupDrivetrain = "Drivetrain"
	GroupBraking    = "Braking & control"
	GroupWheelset   = "Wheelset"
	GroupCockpit    = "Cockpit"
)

// CompositeCrankset tags the pieces that together form one crankset.
const CompositeCrankset = "crankset"

// ComponentDef describes one fixed component position of a build.
type ComponentDef struct {
	Key            string `json:"key" yaml:"key"`
	Label          string `json:"label" yaml:"label"`
	Group          string `json:"group" yaml:"group"`
	CompositeGroup string `json:"compositeGroup,omitempty" yaml:"composite_group,omitempty"`
}

var groupOrder = []string{
	GroupFrameset,
	GroupDrivetrain,
	GroupBraking,
	GroupWheelset,
	GroupCockpit,
}

var components = []ComponentDef{
	{Key: "frame", Label: "Frame", Group: GroupFrameset},
	{Key: "fork", Label: "Fork", Group: GroupFrameset},
	{Key: "headset", Label: "Headset", Group: GroupFrameset},
	{Key: "headset_spacers", Label: "Headset Spacers", Group: GroupFrameset},
	{Key: "thru_axles", Label: "Thru-Axles / Quick Releases", Group: GroupFrameset},
	{Key: "crankset", Label: "Crankset (one complete part or Crank arms + Hardware)", Group: GroupDrivetrain, CompositeGroup: CompositeCrankset},
	{Key: "chainrings", Label: "Chainrings", Group: GroupDrivetrain, CompositeGroup: CompositeCrankset},
	{Key: "bottom_bracket", Label: "Bottom Bracket", Group: GroupDrivetrain},
	{Key: "chain", Label: "Chain", Group: GroupDrivetrain},
	{Key: "cassette", Label: "Cassette", Group: GroupDrivetrain},
	{Key: "front_derailleur", Label: "Front Derailleur", Group: GroupDrivetrain},
	{Key: "rear_derailleur", Label: "Rear Derailleur", Group: GroupDrivetrain},
	{Key: "shifters_brake_levers", Label: "Shifters / Brake Levers", Group: GroupBraking},
	{Key: "brake_calipers", Label: "Brake Calipers", Group: GroupBraking},
	{Key: "brake_rotors", Label: "Brake Rotors", Group: GroupBraking},
	{Key: "cables_housing", Label: "Cables & Housing", Group: GroupBraking},
	{Key: "shift_wires_batteries", Label: "Shift Wires / Batteries", Group: GroupBraking},
	{Key: "front_wheel", Label: "Front Wheel", Group: GroupWheelset},
	{Key: "rear_wheel", Label: "Rear Wheel", Group: GroupWheelset},
	{Key: "tires", Label: "Tires", Group: GroupWheelset},
	{Key: "inner_tubes", Label: "Inner Tubes", Group: GroupWheelset},
	{Key: "rim_tape", Label: "Rim Tape", Group: GroupWheelset},
	{Key: "tubeless_valves_sealant", Label: "Tubeless Valves & Sealant", Group: GroupWheelset},
	{Key: "handlebars_stem", Label: "Handlebars & Stem (integrated or separate)", Group: GroupCockpit},
	{Key: "bar_tape", Label: "Bar Tape", Group: GroupCockpit},
	{Key: "saddle", Label: "Saddle", Group: GroupCockpit},
	{Key: "seatpost", Label: "Seatpost", Group: GroupCockpit},
	{Key: "seatpost_clamp", Label: "Seatpost Clamp", Group: GroupCockpit},
	{Key: "pedals", Label: "Pedals", Group: GroupCockpit},
}

// customBuckets maps each group to the key used for ad-hoc components added
// to that group.
var customBuckets = map[string]string{
	GroupFrameset:   "custom_frameset",
	GroupDrivetrain: "custom_drivetrain",
	GroupBraking:    "custom_braking",
	GroupWheelset:   "custom_wheelset",
	GroupCockpit:    "custom_cockpit",
}

var compositeLabels = map[string]string{
	CompositeCrankset: "Crankset",
}

var (
	byKey        = make(map[string]ComponentDef, len(components))
	bucketGroups = make(map[string]string, len(customBuckets))
)

func init() {
	for _, c := range components {
		byKey[c.Key] = c
	}
	for group, key := range customBuckets {
		bucketGroups[key] = group
	}
}

// Components returns the fixed component list in display order.
func Components() []ComponentDef {
	out := make([]ComponentDef, len(components))
	copy(out, components)
	return out
}

// Groups returns the component group names in display order.
func Groups() []string {
	out := make([]string, len(groupOrder))
	copy(out, groupOrder)
	return out
}

// Lookup returns the fixed component with the given key.
func Lookup(key string) (ComponentDef, bool) {
	c, ok := byKey[key]
	return c, ok
}

// IsComponentKey reports whether key is a fixed catalog component.
func IsComponentKey(key string) bool {
	_, ok := byKey[key]
	return ok
}

// IsCustomBucket reports whether key is one of the reserved custom bucket keys.
func IsCustomBucket(key string) bool {
	_, ok := bucketGroups[key]
	return ok
}

// IsRecognized reports whether key may be used for a slot or attachment:
// either a fixed component or a custom bucket.
func IsRecognized(key string) bool {
	return IsComponentKey(key) || IsCustomBucket(key)
}

// GroupOf returns the group a recognized key belongs to.
func GroupOf(key string) (string, bool) {
	if c, ok := byKey[key]; ok {
		return c.Group, true
	}
	g, ok := bucketGroups[key]
	return g, ok
}

// KeysInGroup returns the fixed component keys of group in display order.
// Custom bucket keys are not included.
func KeysInGroup(group string) []string {
	var keys []string
	for _, c := range components {
		if c.Group == group {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// CustomBucketKey returns the reserved custom key for group.
func CustomBucketKey(group string) (string, bool) {
	k, ok := customBuckets[group]
	return k, ok
}

// CompositeLabel returns the display name of a composite group, falling back
// to the tag itself.
func CompositeLabel(tag string) string {
	if l, ok := compositeLabels[tag]; ok {
		return l
	}
	return tag
}
