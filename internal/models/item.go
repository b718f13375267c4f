package models

import "time"

type Item struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Available   bool   `db:"available" json:"available"`
	OwnerID     int64  `db:"owner_id" json:"owner_id"`
	RequestID   *int64 `db:"request_id" json:"request_id,omitempty"`
}

// CanBook reports whether a new booking may be placed on the item right now.
func (i *Item) CanBook() bool {
	return i.Available
}

// ItemPatch carries the fields of a partial item update.
// Blank strings are ignored, Available and RequestID apply whenever set.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
	RequestID   *int64
}

func (p ItemPatch) Apply(i *Item) {
	if present(p.Name) {
		i.Name = *p.Name
	}
	if present(p.Description) {
		i.Description = *p.Description
	}
	if p.Available != nil {
		i.Available = *p.Available
	}
	if p.RequestID != nil {
		id := *p.RequestID
		i.RequestID = &id
	}
}

// ItemView is an item enriched with its comments and, for the owner, the
// boundaries of its booking history.
type ItemView struct {
	Item        Item
	Comments    []Comment
	LastBooking *time.Time
	NextBooking *time.Time
}
