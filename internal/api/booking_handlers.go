package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	var body BookingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	if body.Start.IsZero() || body.End.IsZero() {
		writeServiceError(w, s.logger, fmt.Errorf("%w: start and end are required", domain.ErrValidation))
		return
	}

	booking, err := s.services.Bookings.CreateBooking(r.Context(), actor, domain.BookingInput{
		ItemID: body.ItemID,
		Start:  body.Start.Time,
		End:    body.End.Time,
	})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDto(booking))
}

func (s *HTTPServer) handleReviewBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeServiceError(w, s.logger, fmt.Errorf("%w: approved must be true or false", domain.ErrValidation))
		return
	}

	booking, err := s.services.Bookings.ReviewBooking(r.Context(), actor, bookingID, approved)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDto(booking))
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	booking, err := s.services.Bookings.GetBooking(r.Context(), actor, bookingID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDto(booking))
}

func (s *HTTPServer) handleBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.GetBookingsByBooker)
}

func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.GetBookingsByOwner)
}

type bookingLister func(ctx context.Context, actorID int64, state models.BookingState) ([]*models.Booking, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		writeServiceError(w, s.logger, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	bookings, err := list(r.Context(), actor, state)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDtos(bookings))
}
