package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		eventBus: eventBus,
		now:      time.Now,
		logger:   logger,
	}
}

// GetOwnerItems returns every item owned by the actor with comments and booking bounds.
func (s *ItemService) GetOwnerItems(ctx context.Context, actorID int64) ([]*models.ItemView, error) {
	items, err := s.store.GetItemsByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, actorID, items)
}

func (s *ItemService) GetItem(ctx context.Context, actorID, itemID int64) (*models.ItemView, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	views, err := s.aggregate(ctx, actorID, []*models.Item{item})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ItemService) aggregate(ctx context.Context, actorID int64, items []*models.Item) ([]*models.ItemView, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	bookings, err := s.store.FindBookings(ctx, domain.BookingFilter{ItemIDs: ids})
	if err != nil {
		return nil, err
	}
	comments, err := s.store.GetCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	return BuildItemViews(actorID, items, bookings, comments), nil
}

// BuildItemViews attaches comments and booking bounds to each item. LastBooking
// is the earliest start and NextBooking the latest end over all bookings of the
// item, whatever their status or position relative to now. Both stay nil unless
// the actor owns the item.
func BuildItemViews(actorID int64, items []*models.Item, bookings []*models.Booking, comments []*models.Comment) []*models.ItemView {
	bookingsByItem := make(map[int64][]*models.Booking, len(items))
	for _, b := range bookings {
		bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
	}
	commentsByItem := make(map[int64][]models.Comment, len(items))
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], *c)
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view := &models.ItemView{
			Item:     *item,
			Comments: commentsByItem[item.ID],
		}
		if view.Comments == nil {
			view.Comments = []models.Comment{}
		}

		if item.OwnerID == actorID {
			for _, b := range bookingsByItem[item.ID] {
				if view.LastBooking == nil || b.Start.Before(*view.LastBooking) {
					start := b.Start
					view.LastBooking = &start
				}
				if view.NextBooking == nil || b.End.After(*view.NextBooking) {
					end := b.End
					view.NextBooking = &end
				}
			}
		}
		views = append(views, view)
	}
	return views
}

func (s *ItemService) CreateItem(ctx context.Context, actorID int64, item *models.Item) (*models.Item, error) {
	if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Description) == "" {
		return nil, fmt.Errorf("%w: item name and description are required", domain.ErrValidation)
	}

	if _, err := s.store.GetUserByID(ctx, actorID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.store.GetItemRequest(ctx, *item.RequestID); err != nil {
			return nil, err
		}
	}

	created := *item
	created.ID = 0
	created.OwnerID = actorID
	if err := s.store.CreateItem(ctx, &created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", created.ID).Int64("owner_id", actorID).Msg("item created")
	return &created, nil
}

// UpdateItem applies a partial update. Only the owner may change an item.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != actorID {
		return nil, fmt.Errorf("%w: user %d does not own item %d", domain.ErrPermissionDenied, actorID, itemID)
	}

	if patch.RequestID != nil {
		if _, err := s.store.GetItemRequest(ctx, *patch.RequestID); err != nil {
			return nil, err
		}
	}

	patch.Apply(item)
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Msg("item deleted")
	return item, nil
}

// SearchItems returns available items whose name or description contains text.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.store.SearchAvailableItems(ctx, text)
}

// CanComment reports whether the actor has a booking of the item that ended before now.
func (s *ItemService) CanComment(ctx context.Context, actorID, itemID int64, now time.Time) (bool, error) {
	return s.store.HasFinishedBooking(ctx, actorID, itemID, now)
}

func (s *ItemService) CreateComment(ctx context.Context, actorID, itemID int64, text string) (*models.Comment, error) {
	now := s.now()

	allowed, err := s.CanComment(ctx, actorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: user %d has no finished booking of item %d", domain.ErrPermissionDenied, actorID, itemID)
	}

	if _, err := s.store.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}
	author, err := s.store.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID: comment.ID,
			ItemID:    itemID,
			AuthorID:  author.ID,
			Created:   comment.Created,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}

	return comment, nil
}
