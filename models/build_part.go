package models

import "time"

// BuildPart attaches a catalog part or a custom part to a build. Component
// always holds the component key; when BuildSlotID is set it mirrors the
// slot's key and never changes afterwards.
type BuildPart struct {
	ID             string    `json:"id"`
	BuildID        string    `json:"buildId"`
	BuildSlotID    *string   `json:"buildSlotId"`
	Component      string    `json:"component"`
	PartID         *string   `json:"partId"`
	Quantity       int       `json:"quantity"`
	Notes          *string   `json:"notes"`
	ComponentLabel *string   `json:"componentLabel"`
	CustomName     *string   `json:"customName"`
	CustomWeightG  *int      `json:"customWeightG"`
	CustomPrice    *float64  `json:"customPrice"`
	CustomCurrency *string   `json:"customCurrency"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BuildPartWithPart is a build part joined with its catalog part, if any.
type BuildPartWithPart struct {
	BuildPart
	Part *Part `json:"part"`
}

// BuildPartPatch lists the mutable fields of a build part. Only fields that
// are Set are written.
type BuildPartPatch struct {
	Quantity       Optional[int]     `json:"quantity"`
	Notes          Optional[string]  `json:"notes"`
	ComponentLabel Optional[string]  `json:"componentLabel"`
	CustomName     Optional[string]  `json:"customName"`
	CustomWeightG  Optional[int]     `json:"customWeightG"`
	CustomPrice    Optional[float64] `json:"customPrice"`
	CustomCurrency Optional[string]  `json:"customCurrency"`
}

// Empty reports whether the patch changes nothing.
func (p BuildPartPatch) Empty() bool {
	return !p.Quantity.Set && !p.Notes.Set && !p.ComponentLabel.Set && !p.CustomName.Set &&
		!p.CustomWeightG.Set && !p.CustomPrice.Set && !p.CustomCurrency.Set
}
