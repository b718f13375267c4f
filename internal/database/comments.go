package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.Created = dbTime(comment.Created)
	id, err := db.insert(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", mapError(err))
	}
	comment.ID = id
	return nil
}

func (db *DB) GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}

	ds := db.dialect.From(goqu.T(tableComments).As("c")).
		InnerJoin(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id"),
			goqu.I("c.text"),
			goqu.I("c.item_id"),
			goqu.I("c.author_id"),
			goqu.I("u.name").As("author_name"),
			goqu.I("c.created"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.created").Asc(), goqu.I("c.id").Asc())

	if err := db.selectDataset(ctx, &comments, ds); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	for _, c := range comments {
		c.Created = c.Created.UTC()
	}
	return comments, nil
}
