package gateway

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"shareit/internal/api"
	"shareit/internal/models"
)

var errInvalid = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalid, fmt.Sprintf(format, args...))
}

func validateState(raw string) error {
	if _, err := models.ParseBookingState(raw); err != nil {
		return invalid("Unknown state: %s", raw)
	}
	return nil
}

// validateBooking requires a window that starts now or later, ends in the
// future and is not empty.
func validateBooking(b api.BookingRequest, now time.Time) error {
	if b.Start.IsZero() || b.End.IsZero() {
		return invalid("start and end are required")
	}
	// The wire format has second precision.
	now = now.Truncate(time.Second)
	if b.Start.Before(now) {
		return invalid("start must not be in the past")
	}
	if !b.End.After(now) {
		return invalid("end must be in the future")
	}
	if !b.Start.Before(b.End.Time) {
		return invalid("start must be before end")
	}
	return nil
}

func validateNewUser(u api.UserDto) error {
	if strings.TrimSpace(u.Name) == "" {
		return invalid("name is required")
	}
	return validateEmail(u.Email)
}

func validateUserPatch(p api.UserPatchRequest) error {
	if p.Email == nil || strings.TrimSpace(*p.Email) == "" {
		return nil
	}
	return validateEmail(*p.Email)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email %q is malformed", email)
	}
	return nil
}

func validateNewItem(i api.ItemRequestBody) error {
	if i.Name == nil || strings.TrimSpace(*i.Name) == "" {
		return invalid("name is required")
	}
	if i.Description == nil || strings.TrimSpace(*i.Description) == "" {
		return invalid("description is required")
	}
	if i.Available == nil {
		return invalid("available is required")
	}
	return nil
}

func validateComment(c api.CommentRequest) error {
	if strings.TrimSpace(c.Text) == "" {
		return invalid("text is required")
	}
	return nil
}

func validateItemRequest(r api.ItemRequestCreate) error {
	if strings.TrimSpace(r.Description) == "" {
		return invalid("description is required")
	}
	return nil
}
