package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryPlastic Category = "Plastic"
	CategoryCan     Category = "Can"
	CategoryWaste   Category = "Waste"
	CategoryPaper   Category = "Paper"
	CategoryOther   Category = "Other"
)

// Categories lists the selectable trash types in display order.
var Categories = []Category{
	CategoryPlastic,
	CategoryCan,
	CategoryWaste,
	CategoryPaper,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryFromLabel maps a stored trash_type label back to its category.
// Labels outside the fixed set were entered as a custom type.
func CategoryFromLabel(label string) (Category, string) {
	label = strings.TrimSpace(label)
	category := Category(label)
	if category.Valid() && category != CategoryOther {
		return category, ""
	}
	return CategoryOther, label
}

type WasteRecord struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"user_id"`
	Category       Category  `json:"category"`
	CustomCategory string    `json:"custom_category,omitempty"`
	Quantity       int       `json:"quantity"`
	Floor          string    `json:"floor"`
	Room           string    `json:"room"`
	OccurredAt     time.Time `json:"occurred_at"`
	PhotoURLs      []string  `json:"photo_urls"`
	CreatedAt      time.Time `json:"created_at"`
}

// Label is the category shown to users: the custom text for Other.
func (r WasteRecord) Label() string {
	if r.Category == CategoryOther {
		return r.CustomCategory
	}
	return string(r.Category)
}

// Contribution is the slice of a trash row the leaderboard needs.
type Contribution struct {
	OwnerID  uuid.UUID
	Quantity int
}
