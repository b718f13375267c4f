package api

import "shareit/internal/models"

func toUserDto(u *models.User) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserDtos(users []*models.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDto(u))
	}
	return out
}

func toItemDto(i *models.Item) ItemDto {
	return ItemDto{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		RequestID:   i.RequestID,
	}
}

func toItemDtos(items []*models.Item) []ItemDto {
	out := make([]ItemDto, 0, len(items))
	for _, i := range items {
		out = append(out, toItemDto(i))
	}
	return out
}

func toCommentDto(c *models.Comment) CommentDto {
	return CommentDto{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    NewLocalDateTime(c.Created),
	}
}

func toItemWithComments(v *models.ItemView) ItemWithCommentsDto {
	dto := ItemWithCommentsDto{
		ID:          v.Item.ID,
		Name:        v.Item.Name,
		Description: v.Item.Description,
		Available:   v.Item.Available,
		RequestID:   v.Item.RequestID,
		Comments:    make([]CommentDto, 0, len(v.Comments)),
	}
	for i := range v.Comments {
		dto.Comments = append(dto.Comments, toCommentDto(&v.Comments[i]))
	}
	if v.LastBooking != nil {
		last := NewLocalDateTime(*v.LastBooking)
		dto.LastBooking = &last
	}
	if v.NextBooking != nil {
		next := NewLocalDateTime(*v.NextBooking)
		dto.NextBooking = &next
	}
	return dto
}

func toItemViewDtos(views []*models.ItemView) []ItemWithCommentsDto {
	out := make([]ItemWithCommentsDto, 0, len(views))
	for _, v := range views {
		out = append(out, toItemWithComments(v))
	}
	return out
}

func toBookingDto(b *models.Booking) BookingDto {
	return BookingDto{
		ID:     b.ID,
		Start:  NewLocalDateTime(b.Start),
		End:    NewLocalDateTime(b.End),
		Item:   toItemDto(&b.Item),
		Booker: toUserDto(&b.Booker),
		Status: b.Status,
	}
}

func toBookingDtos(bookings []*models.Booking) []BookingDto {
	out := make([]BookingDto, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDto(b))
	}
	return out
}

func toItemRequestDto(r *models.ItemRequest) ItemRequestDto {
	return ItemRequestDto{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     NewLocalDateTime(r.Created),
		Items:       []ItemDto{},
	}
}

func toItemRequestDtos(requests []*models.ItemRequest) []ItemRequestDto {
	out := make([]ItemRequestDto, 0, len(requests))
	for _, r := range requests {
		out = append(out, toItemRequestDto(r))
	}
	return out
}

func toItemRequestView(v *models.ItemRequestView) ItemRequestDto {
	dto := toItemRequestDto(&v.Request)
	for i := range v.Items {
		dto.Items = append(dto.Items, toItemDto(&v.Items[i]))
	}
	return dto
}
