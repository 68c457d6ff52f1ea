package model

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidIndex = errors.New("action item index out of range")
	ErrValidation   = errors.New("validation error")
)
