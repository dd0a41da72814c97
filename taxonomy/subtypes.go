package taxonomy

import "slices"

// Catalog parts filling a multi-piece position may say which piece they are.
var (
	CranksetComponentTypes       = []string{"crank_arms", "chainrings", "crankset_hardware"}
	HandlebarsStemComponentTypes = []string{"handlebars", "stem"}
)

// ValidCranksetType reports whether t may be set on a part of component key.
// Only parts of crankset cluster components carry a crankset piece type.
func ValidCranksetType(key, t string) bool {
	c, ok := Lookup(key)
	if !ok || c.CompositeGroup != CompositeCrankset {
		return false
	}
	return slices.Contains(CranksetComponentTypes, t)
}

// ValidHandlebarsStemType reports whether t may be set on a part of component key.
func ValidHandlebarsStemType(key, t string) bool {
	return key == "handlebars_stem" && slices.Contains(HandlebarsStemComponentTypes, t)
}
