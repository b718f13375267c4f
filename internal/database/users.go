package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) usersDataset() *goqu.SelectDataset {
	return db.dialect.From(tableUsers).Select("id", "name", "email")
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	id, err := db.insert(ctx, `INSERT INTO users (name, email) VALUES (?, ?)`, user.Name, user.Email)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	user.ID = id
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.getDataset(ctx, &user, db.usersDataset().Where(goqu.Ex{"id": id})); err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int
	ds := db.dialect.From(tableUsers).Select(goqu.COUNT("*")).Where(goqu.Ex{"id": id})
	if err := db.getDataset(ctx, &count, ds); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := db.selectDataset(ctx, &users, db.usersDataset().Order(goqu.I("id").Asc())); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	err := db.exec(ctx, fmt.Sprintf("user %d", user.ID),
		`UPDATE users SET name = ?, email = ? WHERE id = ?`, user.Name, user.Email, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	if err := db.exec(ctx, fmt.Sprintf("user %d", id), `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
