package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// MemoryStore is an in-process domain.Store. It enforces the same referential
// and uniqueness rules as the SQL schema.
type MemoryStore struct {
	mu sync.RWMutex

	nextID   int64
	users    map[int64]models.User
	emails   map[string]int64
	items    map[int64]models.Item
	bookings map[int64]models.Booking
	comments map[int64]models.Comment
	requests map[int64]models.ItemRequest
}

var _ domain.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]models.User),
		emails:   make(map[string]int64),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
		comments: make(map[int64]models.Comment),
		requests: make(map[int64]models.ItemRequest),
	}
}

func (s *MemoryStore) newID() int64 {
	s.nextID++
	return s.nextID
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", domain.ErrNotFound, what, id)
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return fmt.Errorf("%w: email %s already registered", domain.ErrConflict, user.Email)
	}
	user.ID = s.newID()
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &user, nil
}

func (s *MemoryStore) UserExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok, nil
}

func (s *MemoryStore) GetAllUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[user.ID]
	if !ok {
		return notFound("user", user.ID)
	}
	if owner, taken := s.emails[user.Email]; taken && owner != user.ID {
		return fmt.Errorf("%w: email %s already registered", domain.ErrConflict, user.Email)
	}
	delete(s.emails, old.Email)
	s.emails[user.Email] = user.ID
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return notFound("user", id)
	}
	delete(s.users, id)
	delete(s.emails, user.Email)

	for itemID, item := range s.items {
		if item.OwnerID == id {
			s.deleteItemLocked(itemID)
		}
	}
	for bookingID, b := range s.bookings {
		if b.BookerID == id {
			delete(s.bookings, bookingID)
		}
	}
	for commentID, c := range s.comments {
		if c.AuthorID == id {
			delete(s.comments, commentID)
		}
	}
	for requestID, r := range s.requests {
		if r.RequestorID == id {
			s.deleteRequestLocked(requestID)
		}
	}
	return nil
}

// Items

func (s *MemoryStore) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[item.OwnerID]; !ok {
		return notFound("user", item.OwnerID)
	}
	if item.RequestID != nil {
		if _, ok := s.requests[*item.RequestID]; !ok {
			return notFound("item request", *item.RequestID)
		}
	}
	item.ID = s.newID()
	s.items[item.ID] = cloneItem(*item)
	return nil
}

func (s *MemoryStore) GetItemByID(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, notFound("item", id)
	}
	item = cloneItem(item)
	return &item, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[item.ID]
	if !ok {
		return notFound("item", item.ID)
	}
	if item.RequestID != nil {
		if _, ok := s.requests[*item.RequestID]; !ok {
			return notFound("item request", *item.RequestID)
		}
	}
	updated := cloneItem(*item)
	updated.OwnerID = old.OwnerID
	s.items[item.ID] = updated
	return nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return notFound("item", id)
	}
	s.deleteItemLocked(id)
	return nil
}

func (s *MemoryStore) deleteItemLocked(id int64) {
	delete(s.items, id)
	for bookingID, b := range s.bookings {
		if b.ItemID == id {
			delete(s.bookings, bookingID)
		}
	}
	for commentID, c := range s.comments {
		if c.ItemID == id {
			delete(s.comments, commentID)
		}
	}
}

func (s *MemoryStore) GetItemsByOwner(_ context.Context, ownerID int64) ([]*models.Item, error) {
	return s.findItems(func(i *models.Item) bool { return i.OwnerID == ownerID }), nil
}

func (s *MemoryStore) GetItemsByRequests(_ context.Context, requestIDs []int64) ([]*models.Item, error) {
	wanted := make(map[int64]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = struct{}{}
	}
	return s.findItems(func(i *models.Item) bool {
		if i.RequestID == nil {
			return false
		}
		_, ok := wanted[*i.RequestID]
		return ok
	}), nil
}

func (s *MemoryStore) SearchAvailableItems(_ context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	needle := strings.ToUpper(text)
	return s.findItems(func(i *models.Item) bool {
		return i.Available &&
			(strings.Contains(strings.ToUpper(i.Name), needle) || strings.Contains(strings.ToUpper(i.Description), needle))
	}), nil
}

func (s *MemoryStore) findItems(match func(*models.Item) bool) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []*models.Item{}
	for _, item := range s.items {
		item := cloneItem(item)
		if match(&item) {
			items = append(items, &item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func cloneItem(item models.Item) models.Item {
	if item.RequestID != nil {
		id := *item.RequestID
		item.RequestID = &id
	}
	return item
}

// Bookings

func (s *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[booking.ItemID]; !ok {
		return notFound("item", booking.ItemID)
	}
	if _, ok := s.users[booking.BookerID]; !ok {
		return notFound("user", booking.BookerID)
	}
	if !booking.Start.Before(booking.End) {
		return fmt.Errorf("%w: booking start must be before end", domain.ErrValidation)
	}

	booking.ID = s.newID()
	stored := *booking
	stored.Item = models.Item{}
	stored.Booker = models.User{}
	s.bookings[booking.ID] = stored
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("booking", id)
	}
	return s.resolveLocked(b), nil
}

func (s *MemoryStore) UpdateBookingStatus(_ context.Context, id int64, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return notFound("booking", id)
	}
	b.Status = status
	s.bookings[id] = b
	return nil
}

func (s *MemoryStore) FindBookings(_ context.Context, filter domain.BookingFilter) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := []*models.Booking{}
	for _, b := range s.bookings {
		resolved := s.resolveLocked(b)
		if filter.Matches(resolved) {
			bookings = append(bookings, resolved)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].Start.Equal(bookings[j].Start) {
			return bookings[i].Start.Before(bookings[j].Start)
		}
		return bookings[i].ID < bookings[j].ID
	})
	return bookings, nil
}

func (s *MemoryStore) HasFinishedBooking(_ context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.Finished(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) resolveLocked(b models.Booking) *models.Booking {
	b.Item = cloneItem(s.items[b.ItemID])
	b.Booker = s.users[b.BookerID]
	return &b
}

// Comments

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[comment.ItemID]; !ok {
		return notFound("item", comment.ItemID)
	}
	author, ok := s.users[comment.AuthorID]
	if !ok {
		return notFound("user", comment.AuthorID)
	}
	comment.ID = s.newID()
	comment.AuthorName = author.Name
	s.comments[comment.ID] = *comment
	return nil
}

func (s *MemoryStore) GetCommentsByItems(_ context.Context, itemIDs []int64) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	comments := []*models.Comment{}
	for _, c := range s.comments {
		if _, ok := wanted[c.ItemID]; !ok {
			continue
		}
		c.AuthorName = s.users[c.AuthorID].Name
		comments = append(comments, &c)
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.Before(comments[j].Created)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

// Item requests

func (s *MemoryStore) CreateItemRequest(_ context.Context, request *models.ItemRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[request.RequestorID]; !ok {
		return notFound("user", request.RequestorID)
	}
	request.ID = s.newID()
	s.requests[request.ID] = *request
	return nil
}

func (s *MemoryStore) GetItemRequest(_ context.Context, id int64) (*models.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, notFound("item request", id)
	}
	return &r, nil
}

func (s *MemoryStore) GetItemRequestsByRequestor(_ context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return s.findRequests(func(r *models.ItemRequest) bool { return r.RequestorID == requestorID }), nil
}

func (s *MemoryStore) GetAllItemRequests(_ context.Context) ([]*models.ItemRequest, error) {
	return s.findRequests(func(*models.ItemRequest) bool { return true }), nil
}

func (s *MemoryStore) findRequests(match func(*models.ItemRequest) bool) []*models.ItemRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := []*models.ItemRequest{}
	for _, r := range s.requests {
		if match(&r) {
			requests = append(requests, &r)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests
}

func (s *MemoryStore) deleteRequestLocked(id int64) {
	delete(s.requests, id)
	for itemID, item := range s.items {
		if item.RequestID != nil && *item.RequestID == id {
			item.RequestID = nil
			s.items[itemID] = item
		}
	}
}
