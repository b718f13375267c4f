package models

import "time"

type Comment struct {
	ID         int64     `db:"id" json:"id"`
	Text       string    `db:"text" json:"text"`
	ItemID     int64     `db:"item_id" json:"item_id"`
	AuthorID   int64     `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Created    time.Time `db:"created" json:"created"`
}

type ItemRequest struct {
	ID          int64     `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	RequestorID int64     `db:"requestor_id" json:"requestor_id"`
	Created     time.Time `db:"created" json:"created"`
}

// ItemRequestView is a request together with the items offered against it.
type ItemRequestView struct {
	Request ItemRequest
	Items   []Item
}
