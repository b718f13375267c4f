package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemOperations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner, booker, item := seed(t, db)

	t.Run("GetItemByID", func(t *testing.T) {
		got, err := db.GetItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, *item, *got)
		assert.Nil(t, got.RequestID)

		_, err = db.GetItemByID(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CreateItem_UnknownOwner", func(t *testing.T) {
		err := db.CreateItem(ctx, &models.Item{Name: "x", Description: "y", OwnerID: 999})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpdateItem", func(t *testing.T) {
		item.Available = false
		item.Name = "Hammer drill"
		require.NoError(t, db.UpdateItem(ctx, item))

		got, err := db.GetItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, got.Available)
		assert.Equal(t, "Hammer drill", got.Name)

		assert.ErrorIs(t, db.UpdateItem(ctx, &models.Item{ID: 999}), domain.ErrNotFound)
	})

	t.Run("GetItemsByOwner", func(t *testing.T) {
		items, err := db.GetItemsByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		items, err = db.GetItemsByOwner(ctx, booker.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})

	t.Run("GetItemsByRequests", func(t *testing.T) {
		req := &models.ItemRequest{Description: "need a saw", RequestorID: booker.ID, Created: time.Now()}
		require.NoError(t, db.CreateItemRequest(ctx, req))

		saw := &models.Item{Name: "Saw", Description: "Hand saw", Available: true, OwnerID: owner.ID, RequestID: &req.ID}
		require.NoError(t, db.CreateItem(ctx, saw))

		items, err := db.GetItemsByRequests(ctx, []int64{req.ID})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, saw.ID, items[0].ID)
		require.NotNil(t, items[0].RequestID)
		assert.Equal(t, req.ID, *items[0].RequestID)

		items, err = db.GetItemsByRequests(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("DeleteItem", func(t *testing.T) {
		require.NoError(t, db.DeleteItem(ctx, item.ID))
		assert.ErrorIs(t, db.DeleteItem(ctx, item.ID), domain.ErrNotFound)
	})
}

func TestSearchAvailableItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner, _, _ := seed(t, db)

	hidden := &models.Item{Name: "Old drill", Description: "broken", Available: false, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, hidden))
	ladder := &models.Item{Name: "Ladder", Description: "Aluminium, fits a DRILL box", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, ladder))

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "name match ignores case", text: "dRiLl", want: 2},
		{name: "description match", text: "alumin", want: 1},
		{name: "no match", text: "boat", want: 0},
		{name: "blank", text: "   ", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := db.SearchAvailableItems(ctx, tt.text)
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
			for _, it := range items {
				assert.True(t, it.Available)
			}
		})
	}
}
