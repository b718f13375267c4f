package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.Users.GetAllUsers(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDtos(users))
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.services.Users.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDto(user))
}

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body UserDto
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.services.Users.CreateUser(r.Context(), &models.User{Name: body.Name, Email: body.Email})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDto(user))
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	var body UserPatchRequest
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.services.Users.UpdateUser(r.Context(), id, models.UserPatch{Name: body.Name, Email: body.Email})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDto(user))
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.services.Users.DeleteUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDto(user))
}
