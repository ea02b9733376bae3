package store

import "errors"

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrMessageNotFound = errors.New("chat message not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrValidation      = errors.New("validation failed")
)
