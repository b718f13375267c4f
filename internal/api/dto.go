package api

import (
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

// LocalDateTime is a wall-clock timestamp carried without a zone. Values are
// interpreted and rendered in UTC. RFC3339 input is accepted as well.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.UTC()}
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(models.DateTimeLayout) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseDateTime reads a timestamp in the wire layout or RFC3339.
func ParseDateTime(raw string) (time.Time, error) {
	if parsed, err := time.ParseInLocation(models.DateTimeLayout, raw, time.UTC); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q, expected %s", raw, models.DateTimeLayout)
	}
	return parsed.UTC(), nil
}

type UserDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserPatchRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type ItemDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type ItemRequestBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

type CommentDto struct {
	ID         int64         `json:"id"`
	Text       string        `json:"text"`
	AuthorName string        `json:"authorName"`
	Created    LocalDateTime `json:"created"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type ItemWithCommentsDto struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Available   bool           `json:"available"`
	RequestID   *int64         `json:"requestId"`
	Comments    []CommentDto   `json:"comments"`
	LastBooking *LocalDateTime `json:"lastBooking"`
	NextBooking *LocalDateTime `json:"nextBooking"`
}

type BookingRequest struct {
	ItemID int64         `json:"itemId"`
	Start  LocalDateTime `json:"start"`
	End    LocalDateTime `json:"end"`
}

type BookingDto struct {
	ID     int64                `json:"id"`
	Start  LocalDateTime        `json:"start"`
	End    LocalDateTime        `json:"end"`
	Item   ItemDto              `json:"item"`
	Booker UserDto              `json:"booker"`
	Status models.BookingStatus `json:"status"`
}

type ItemRequestCreate struct {
	Description string `json:"description"`
}

type ItemRequestDto struct {
	ID          int64         `json:"id"`
	Description string        `json:"description"`
	RequestorID int64         `json:"requestorId"`
	Created     LocalDateTime `json:"created"`
	Items       []ItemDto     `json:"items"`
}
