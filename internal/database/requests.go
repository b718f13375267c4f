package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) requestsDataset() *goqu.SelectDataset {
	return db.dialect.From(tableRequests).
		Select("id", "description", "requestor_id", "created").
		Order(goqu.I("id").Asc())
}

func (db *DB) CreateItemRequest(ctx context.Context, request *models.ItemRequest) error {
	request.Created = dbTime(request.Created)
	id, err := db.insert(ctx,
		`INSERT INTO item_requests (description, requestor_id, created) VALUES (?, ?, ?)`,
		request.Description, request.RequestorID, request.Created)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", mapError(err))
	}
	request.ID = id
	return nil
}

func (db *DB) GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	if err := db.getDataset(ctx, &request, db.requestsDataset().Where(goqu.Ex{"id": id})); err != nil {
		return nil, notFound(err, "item request", id)
	}
	request.Created = request.Created.UTC()
	return &request, nil
}

func (db *DB) GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return db.findRequests(ctx, db.requestsDataset().Where(goqu.Ex{"requestor_id": requestorID}))
}

func (db *DB) GetAllItemRequests(ctx context.Context) ([]*models.ItemRequest, error) {
	return db.findRequests(ctx, db.requestsDataset())
}

func (db *DB) findRequests(ctx context.Context, ds *goqu.SelectDataset) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	if err := db.selectDataset(ctx, &requests, ds); err != nil {
		return nil, fmt.Errorf("failed to get item requests: %w", err)
	}
	for _, r := range requests {
		r.Created = r.Created.UTC()
	}
	return requests, nil
}
