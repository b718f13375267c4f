package models

import "time"

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	ItemID   int64         `json:"item_id"`
	BookerID int64         `json:"booker_id"`
	Status   BookingStatus `json:"status"`

	// Item and Booker are resolved by the store on read.
	Item   Item `json:"item"`
	Booker User `json:"booker"`
}

func (b *Booking) OwnerID() int64 {
	return b.Item.OwnerID
}

// Finished reports whether the booking window has fully elapsed at now.
func (b *Booking) Finished(now time.Time) bool {
	return b.End.Before(now)
}
