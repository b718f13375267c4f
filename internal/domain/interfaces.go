package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	GetItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	// FindBookings returns bookings matching the filter ordered by start ascending.
	FindBookings(ctx context.Context, filter BookingFilter) ([]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

type RequestStore interface {
	CreateItemRequest(ctx context.Context, request *models.ItemRequest) error
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetAllItemRequests(ctx context.Context) ([]*models.ItemRequest, error)
}

// Store is the full entity store capability the services depend on.
type Store interface {
	UserStore
	ItemStore
	BookingStore
	CommentStore
	RequestStore
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimiter counts hits per key inside a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, actorID int64, input BookingInput) (*models.Booking, error)
	ReviewBooking(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error)
	GetBooking(ctx context.Context, actorID, bookingID int64) (*models.Booking, error)
	GetBookingsByBooker(ctx context.Context, actorID int64, state models.BookingState) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, actorID int64, state models.BookingState) ([]*models.Booking, error)
}

type ItemService interface {
	GetOwnerItems(ctx context.Context, actorID int64) ([]*models.ItemView, error)
	GetItem(ctx context.Context, actorID, itemID int64) (*models.ItemView, error)
	CreateItem(ctx context.Context, actorID int64, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, actorID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, itemID int64) (*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	CreateComment(ctx context.Context, actorID, itemID int64, text string) (*models.Comment, error)
}

type UserService interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (*models.User, error)
}

type RequestService interface {
	CreateItemRequest(ctx context.Context, actorID int64, description string) (*models.ItemRequest, error)
	GetOwnItemRequests(ctx context.Context, actorID int64) ([]*models.ItemRequestView, error)
	GetAllItemRequests(ctx context.Context) ([]*models.ItemRequest, error)
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequestView, error)
}

// BookingInput is the caller supplied part of a new booking.
type BookingInput struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}
