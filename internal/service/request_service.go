package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	store  domain.Store
	now    func() time.Time
	logger *zerolog.Logger
}

var _ domain.RequestService = (*RequestService)(nil)

func NewRequestService(store domain.Store, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

func (s *RequestService) CreateItemRequest(ctx context.Context, actorID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.store.GetUserByID(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: request description is required", domain.ErrValidation)
	}

	request := &models.ItemRequest{
		Description: description,
		RequestorID: actorID,
		Created:     s.now(),
	}
	if err := s.store.CreateItemRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", actorID).Msg("item request created")
	return request, nil
}

// GetOwnItemRequests lists the actor's requests with the items offered against each.
func (s *RequestService) GetOwnItemRequests(ctx context.Context, actorID int64) ([]*models.ItemRequestView, error) {
	requests, err := s.store.GetItemRequestsByRequestor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}
	items, err := s.store.GetItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]models.Item, len(requests))
	for _, item := range items {
		byRequest[*item.RequestID] = append(byRequest[*item.RequestID], *item)
	}

	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, newRequestView(r, byRequest[r.ID]))
	}
	return views, nil
}

func (s *RequestService) GetAllItemRequests(ctx context.Context) ([]*models.ItemRequest, error) {
	return s.store.GetAllItemRequests(ctx)
}

func (s *RequestService) GetItemRequest(ctx context.Context, id int64) (*models.ItemRequestView, error) {
	request, err := s.store.GetItemRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetItemsByRequests(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	offered := make([]models.Item, 0, len(items))
	for _, item := range items {
		offered = append(offered, *item)
	}
	return newRequestView(request, offered), nil
}

func newRequestView(r *models.ItemRequest, items []models.Item) *models.ItemRequestView {
	if items == nil {
		items = []models.Item{}
	}
	return &models.ItemRequestView{Request: *r, Items: items}
}
