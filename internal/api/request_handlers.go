package api

import "net/http"

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	var body ItemRequestCreate
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	request, err := s.services.Requests.CreateItemRequest(r.Context(), actor, body.Description)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemRequestDto(request))
}

func (s *HTTPServer) handleOwnRequests(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	views, err := s.services.Requests.GetOwnItemRequests(r.Context(), actor)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	out := make([]ItemRequestDto, 0, len(views))
	for _, v := range views {
		out = append(out, toItemRequestView(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleAllRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.services.Requests.GetAllItemRequests(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemRequestDtos(requests))
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	view, err := s.services.Requests.GetItemRequest(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemRequestView(view))
}
