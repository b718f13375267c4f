package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store  domain.UserStore
	logger *zerolog.Logger
}

var _ domain.UserService = (*UserService)(nil)

func NewUserService(store domain.UserStore, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.GetAllUsers(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if strings.TrimSpace(user.Name) == "" {
		return nil, fmt.Errorf("%w: user name is required", domain.ErrValidation)
	}
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}

	created := &models.User{Name: user.Name, Email: user.Email}
	if err := s.store.CreateUser(ctx, created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

// UpdateUser applies the non-blank fields of patch.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return user, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	return nil
}
