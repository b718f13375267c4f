package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateBooking places a WAITING booking of the item for the actor. Overlapping
// bookings of the same item are accepted.
func (s *BookingService) CreateBooking(ctx context.Context, actorID int64, input domain.BookingInput) (*models.Booking, error) {
	booker, err := s.store.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	item, err := s.store.GetItemByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if !item.CanBook() {
		return nil, fmt.Errorf("%w: item %d", domain.ErrNotAvailable, item.ID)
	}

	if !input.Start.Before(input.End) {
		return nil, fmt.Errorf("%w: booking start must be before end", domain.ErrValidation)
	}

	booking := &models.Booking{
		Start:    input.Start,
		End:      input.End,
		ItemID:   item.ID,
		BookerID: booker.ID,
		Status:   models.StatusWaiting,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	booking.Item = *item
	booking.Booker = *booker

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, actorID)

	return booking, nil
}

// ReviewBooking lets the item owner approve or reject a booking. A booking that
// was already reviewed is overwritten.
func (s *BookingService) ReviewBooking(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.OwnerID() != actorID {
		return nil, fmt.Errorf("%w: user %d does not own item %d", domain.ErrPermissionDenied, actorID, booking.ItemID)
	}

	status, eventType := models.StatusRejected, events.EventBookingRejected
	if approved {
		status, eventType = models.StatusApproved, events.EventBookingApproved
	}

	if err := s.store.UpdateBookingStatus(ctx, booking.ID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("status", string(status)).
		Int64("owner_id", actorID).
		Msg("booking reviewed")
	s.publishEvent(eventType, booking, actorID)

	return booking, nil
}

// GetBooking returns the booking to its booker or to the owner of the booked item.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != actorID && booking.OwnerID() != actorID {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrPermissionDenied, bookingID)
	}
	return booking, nil
}

func (s *BookingService) GetBookingsByBooker(ctx context.Context, actorID int64, state models.BookingState) ([]*models.Booking, error) {
	// A zero BookerID would leave the filter unconstrained.
	if err := checkActor(actorID); err != nil {
		return nil, err
	}
	filter, err := StateFilter(state, s.now())
	if err != nil {
		return nil, err
	}
	filter.BookerID = actorID
	return s.store.FindBookings(ctx, filter)
}

func (s *BookingService) GetBookingsByOwner(ctx context.Context, actorID int64, state models.BookingState) ([]*models.Booking, error) {
	if err := checkActor(actorID); err != nil {
		return nil, err
	}
	exists, err := s.store.UserExists(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, actorID)
	}

	filter, err := StateFilter(state, s.now())
	if err != nil {
		return nil, err
	}
	filter.OwnerID = actorID
	return s.store.FindBookings(ctx, filter)
}

func checkActor(actorID int64) error {
	if actorID <= 0 {
		return fmt.Errorf("%w: invalid user id %d", domain.ErrValidation, actorID)
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		ItemName:    booking.Item.Name,
		OwnerID:     booking.OwnerID(),
		BookerID:    booking.BookerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
