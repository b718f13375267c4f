package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

// failingStore delegates to a MemoryStore except for the methods a test stubs.
type failingStore struct {
	domain.Store
	mock.Mock
}

func (m *failingStore) FindBookings(ctx context.Context, f domain.BookingFilter) ([]*models.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *failingStore) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *failingStore) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookerID, itemID, now)
	return args.Bool(0), args.Error(1)
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func utc(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	store  *repository.MemoryStore
	owner  *models.User
	booker *models.User
	item   *models.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: repository.NewMemoryStore()}

	f.owner = &models.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, f.store.CreateUser(ctx, f.owner))
	f.booker = &models.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, f.store.CreateUser(ctx, f.booker))
	f.item = &models.Item{Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: f.owner.ID}
	require.NoError(t, f.store.CreateItem(ctx, f.item))
	return f
}

func (f *fixture) book(t *testing.T, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{Start: start, End: end, ItemID: f.item.ID, BookerID: f.booker.ID, Status: status}
	require.NoError(t, f.store.CreateBooking(context.Background(), b))
	return b
}
