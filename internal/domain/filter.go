package domain

import (
	"slices"
	"time"

	"shareit/internal/models"
)

// BookingFilter selects bookings. Zero-valued fields do not constrain the result.
type BookingFilter struct {
	BookerID   int64
	OwnerID    int64
	ItemIDs    []int64
	EndBefore  time.Time
	StartAfter time.Time
	Status     models.BookingStatus
}

func (f BookingFilter) Matches(b *models.Booking) bool {
	if f.BookerID != 0 && b.BookerID != f.BookerID {
		return false
	}
	if f.OwnerID != 0 && b.Item.OwnerID != f.OwnerID {
		return false
	}
	if f.ItemIDs != nil && !slices.Contains(f.ItemIDs, b.ItemID) {
		return false
	}
	if !f.EndBefore.IsZero() && !b.End.Before(f.EndBefore) {
		return false
	}
	if !f.StartAfter.IsZero() && !b.Start.After(f.StartAfter) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}
