package service

import (
	"context"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(repository.NewMemoryStore(), testLogger())

	ann, err := s.CreateUser(ctx, &models.User{ID: 42, Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, int64(42), ann.ID)

	bob, err := s.CreateUser(ctx, &models.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	t.Run("CreateValidation", func(t *testing.T) {
		tests := []struct {
			name string
			user models.User
		}{
			{name: "blank name", user: models.User{Name: " ", Email: "x@example.com"}},
			{name: "missing email", user: models.User{Name: "X"}},
			{name: "malformed email", user: models.User{Name: "X", Email: "not-an-email"}},
			{name: "display name email", user: models.User{Name: "X", Email: "X <x@example.com>"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.CreateUser(ctx, &tt.user)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := s.CreateUser(ctx, &models.User{Name: "Ann 2", Email: "ann@example.com"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("UpdateIgnoresBlank", func(t *testing.T) {
		updated, err := s.UpdateUser(ctx, ann.ID, models.UserPatch{Name: strPtr("Anna"), Email: strPtr("  ")})
		require.NoError(t, err)
		assert.Equal(t, "Anna", updated.Name)
		assert.Equal(t, "ann@example.com", updated.Email)
	})

	t.Run("UpdateEmailConflict", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, ann.ID, models.UserPatch{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("UpdateInvalidEmail", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, ann.ID, models.UserPatch{Email: strPtr("nope")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		_, err := s.UpdateUser(ctx, 999, models.UserPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("GetAll", func(t *testing.T) {
		users, err := s.GetAllUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		deleted, err := s.DeleteUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob", deleted.Name)

		_, err = s.GetUserByID(ctx, bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.DeleteUser(ctx, bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
