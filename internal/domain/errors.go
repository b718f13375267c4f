package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("access denied")
	ErrNotAvailable     = errors.New("not available")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
)
