package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

type bookingRow struct {
	ID              int64     `db:"id"`
	Start           time.Time `db:"start_date"`
	End             time.Time `db:"end_date"`
	ItemID          int64     `db:"item_id"`
	BookerID        int64     `db:"booker_id"`
	Status          string    `db:"status"`
	ItemName        string    `db:"item_name"`
	ItemDescription string    `db:"item_description"`
	ItemAvailable   bool      `db:"item_available"`
	ItemOwnerID     int64     `db:"item_owner_id"`
	ItemRequestID   *int64    `db:"item_request_id"`
	BookerName      string    `db:"booker_name"`
	BookerEmail     string    `db:"booker_email"`
}

func (r bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:       r.ID,
		Start:    r.Start.UTC(),
		End:      r.End.UTC(),
		ItemID:   r.ItemID,
		BookerID: r.BookerID,
		Status:   models.BookingStatus(r.Status),
		Item: models.Item{
			ID:          r.ItemID,
			Name:        r.ItemName,
			Description: r.ItemDescription,
			Available:   r.ItemAvailable,
			OwnerID:     r.ItemOwnerID,
			RequestID:   r.ItemRequestID,
		},
		Booker: models.User{
			ID:    r.BookerID,
			Name:  r.BookerName,
			Email: r.BookerEmail,
		},
	}
}

func (db *DB) bookingsDataset() *goqu.SelectDataset {
	return db.dialect.From(goqu.T(tableBookings).As("b")).
		InnerJoin(goqu.T(tableItems).As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		InnerJoin(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.start_date"),
			goqu.I("b.end_date"),
			goqu.I("b.item_id"),
			goqu.I("b.booker_id"),
			goqu.I("b.status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.description").As("item_description"),
			goqu.I("i.available").As("item_available"),
			goqu.I("i.owner_id").As("item_owner_id"),
			goqu.I("i.request_id").As("item_request_id"),
			goqu.I("u.name").As("booker_name"),
			goqu.I("u.email").As("booker_email"),
		)
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.Start = dbTime(booking.Start)
	booking.End = dbTime(booking.End)
	id, err := db.insert(ctx,
		`INSERT INTO bookings (start_date, end_date, item_id, booker_id, status) VALUES (?, ?, ?, ?, ?)`,
		booking.Start, booking.End, booking.ItemID, booking.BookerID, string(booking.Status))
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", mapError(err))
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var row bookingRow
	if err := db.getDataset(ctx, &row, db.bookingsDataset().Where(goqu.I("b.id").Eq(id))); err != nil {
		return nil, notFound(err, "booking", id)
	}
	return row.toModel(), nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	err := db.exec(ctx, fmt.Sprintf("booking %d", id),
		`UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

func (db *DB) FindBookings(ctx context.Context, filter domain.BookingFilter) ([]*models.Booking, error) {
	if filter.ItemIDs != nil && len(filter.ItemIDs) == 0 {
		return []*models.Booking{}, nil
	}

	ds := db.bookingsDataset().
		Where(bookingConditions(filter)...).
		Order(goqu.I("b.start_date").Asc(), goqu.I("b.id").Asc())

	var rows []bookingRow
	if err := db.selectDataset(ctx, &rows, ds); err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.toModel())
	}
	return bookings, nil
}

func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var count int
	ds := db.dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("booker_id").Eq(bookerID),
			goqu.C("item_id").Eq(itemID),
			goqu.C("end_date").Lt(now.UTC()),
		)
	if err := db.getDataset(ctx, &count, ds); err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

func bookingConditions(f domain.BookingFilter) []goqu.Expression {
	var conds []goqu.Expression
	if f.BookerID != 0 {
		conds = append(conds, goqu.I("b.booker_id").Eq(f.BookerID))
	}
	if f.OwnerID != 0 {
		conds = append(conds, goqu.I("i.owner_id").Eq(f.OwnerID))
	}
	if len(f.ItemIDs) > 0 {
		conds = append(conds, goqu.I("b.item_id").In(f.ItemIDs))
	}
	if !f.EndBefore.IsZero() {
		conds = append(conds, goqu.I("b.end_date").Lt(f.EndBefore.UTC()))
	}
	if !f.StartAfter.IsZero() {
		conds = append(conds, goqu.I("b.start_date").Gt(f.StartAfter.UTC()))
	}
	if f.Status != "" {
		conds = append(conds, goqu.I("b.status").Eq(string(f.Status)))
	}
	return conds
}
