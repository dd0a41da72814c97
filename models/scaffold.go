package models

// Category is a named section of a build's scaffold.
type Category struct {
	ID        string `json:"id"`
	BuildID   string `json:"buildId"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// Group is a user-named cluster of slots. CategoryID is nil when the group
// has no category of its own.
type Group struct {
	ID         string  `json:"id"`
	BuildID    string  `json:"buildId"`
	Name       string  `json:"name"`
	CategoryID *string `json:"categoryId"`
	SortOrder  int     `json:"sortOrder"`
}

// Slot is one addressable component position inside a category.
type Slot struct {
	ID           string  `json:"id"`
	BuildID      string  `json:"buildId"`
	CategoryID   string  `json:"categoryId"`
	ComponentKey string  `json:"componentKey"`
	SortOrder    int     `json:"sortOrder"`
	GroupID      *string `json:"groupId"`
}

// GroupRef identifies a group on a scaffold slot.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScaffoldSlot is a slot as rendered in a scaffold tree.
type ScaffoldSlot struct {
	ID           string    `json:"id"`
	ComponentKey string    `json:"componentKey"`
	SortOrder    int       `json:"sortOrder"`
	GroupID      *string   `json:"groupId"`
	Group        *GroupRef `json:"group"`
}

// ScaffoldCategory is a category with its ordered slots.
type ScaffoldCategory struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	SortOrder int            `json:"sortOrder"`
	Slots     []ScaffoldSlot `json:"slots"`
}

// Scaffold is the full component layout of a build.
type Scaffold struct {
	Categories []ScaffoldCategory `json:"categories"`
	Groups     []Group            `json:"groups"`
}

// SlotCount returns the number of slots across all categories.
func (s *Scaffold) SlotCount() int {
	n := 0
	for _, c := range s.Categories {
		n += len(c.Slots)
	}
	return n
}
