package models

import (
	"fmt"
	"strings"
)

// BookingStatus is the stored lifecycle value of a booking.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState names a query-time filter over bookings. It is never persisted.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var bookingStates = []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseBookingState resolves a state name case-insensitively. An empty name means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if name == "" {
		return StateAll, nil
	}
	for _, s := range bookingStates {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown state: %s", raw)
}

const (
	// UserIDHeader carries the acting user id on every actor-scoped request.
	UserIDHeader = "X-Sharer-User-Id"

	// DateTimeLayout is the wire format of booking and comment timestamps.
	DateTimeLayout = "2006-01-02T15:04:05"
)
