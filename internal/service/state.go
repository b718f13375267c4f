package service

import (
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// CurrentMeansApproved is the status selected by the CURRENT state. CURRENT
// does not look at the booking window at all, it lists every approved booking.
const CurrentMeansApproved = models.StatusApproved

// StateFilter translates a query state into store filter conditions evaluated
// against now.
func StateFilter(state models.BookingState, now time.Time) (domain.BookingFilter, error) {
	var f domain.BookingFilter
	switch state {
	case models.StateAll, "":
	case models.StatePast:
		f.EndBefore = now
	case models.StateFuture:
		f.StartAfter = now
	case models.StateCurrent:
		f.Status = CurrentMeansApproved
	case models.StateWaiting:
		f.Status = models.StatusWaiting
	case models.StateRejected:
		f.Status = models.StatusRejected
	default:
		return f, fmt.Errorf("%w: unknown state: %s", domain.ErrValidation, state)
	}
	return f, nil
}
