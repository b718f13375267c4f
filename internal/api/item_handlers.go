package api

import (
	"fmt"
	"net/http"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (s *HTTPServer) handleOwnerItems(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	views, err := s.services.Items.GetOwnerItems(r.Context(), actor)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemViewDtos(views))
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	view, err := s.services.Items.GetItem(r.Context(), actor, itemID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemWithComments(view))
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	var body ItemRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	if body.Name == nil || body.Description == nil || body.Available == nil {
		writeServiceError(w, s.logger, fmt.Errorf("%w: name, description and available are required", domain.ErrValidation))
		return
	}

	item, err := s.services.Items.CreateItem(r.Context(), actor, &models.Item{
		Name:        *body.Name,
		Description: *body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDto(item))
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	var body ItemRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	item, err := s.services.Items.UpdateItem(r.Context(), actor, itemID, models.ItemPatch{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDto(item))
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	item, err := s.services.Items.DeleteItem(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDto(item))
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Items.SearchItems(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDtos(items))
}

func (s *HTTPServer) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	var body CommentRequest
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	comment, err := s.services.Items.CreateComment(r.Context(), actor, itemID, body.Text)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentDto(comment))
}
