package models

import "time"

// Build is a user's bike build project. UserID is nil for legacy,
// anonymous builds.
type Build struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"userId"`
	Name      string    `json:"name"`
	BikeType  string    `json:"bikeType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Part is a reusable catalog part, independent of any build.
type Part struct {
	ID                          string    `json:"id"`
	Name                        string    `json:"name"`
	Component                   string    `json:"component"`
	WeightG                     *int      `json:"weightG"`
	Price                       *float64  `json:"price"`
	Currency                    *string   `json:"currency"`
	SourceURL                   *string   `json:"sourceUrl"`
	SourceName                  *string   `json:"sourceName"`
	CompatibilityTags           []string  `json:"compatibilityTags"`
	Notes                       *string   `json:"notes"`
	CranksetComponentType       *string   `json:"cranksetComponentType"`
	HandlebarsStemComponentType *string   `json:"handlebarsStemComponentType"`
	CreatedAt                   time.Time `json:"createdAt"`
}
