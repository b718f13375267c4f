package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) itemsDataset() *goqu.SelectDataset {
	return db.dialect.From(tableItems).
		Select("id", "name", "description", "available", "owner_id", "request_id").
		Order(goqu.I("id").Asc())
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := db.insert(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", mapError(err))
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := db.getDataset(ctx, &item, db.itemsDataset().Where(goqu.Ex{"id": id})); err != nil {
		return nil, notFound(err, "item", id)
	}
	return &item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	err := db.exec(ctx, fmt.Sprintf("item %d", item.ID),
		`UPDATE items SET name = ?, description = ?, available = ?, request_id = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.RequestID, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	if err := db.exec(ctx, fmt.Sprintf("item %d", id), `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	return db.findItems(ctx, db.itemsDataset().Where(goqu.Ex{"owner_id": ownerID}))
}

func (db *DB) GetItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return []*models.Item{}, nil
	}
	return db.findItems(ctx, db.itemsDataset().Where(goqu.Ex{"request_id": requestIDs}))
}

// SearchAvailableItems matches text case-insensitively against name or description.
func (db *DB) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	pattern := "%" + strings.ToUpper(text) + "%"
	return db.findItems(ctx, db.itemsDataset().Where(
		goqu.L("available = ?", true),
		goqu.Or(
			goqu.L("UPPER(name) LIKE ?", pattern),
			goqu.L("UPPER(description) LIKE ?", pattern),
		),
	))
}

func (db *DB) findItems(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Item, error) {
	items := []*models.Item{}
	if err := db.selectDataset(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	return items, nil
}
