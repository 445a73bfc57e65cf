package service

import "errors"

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrNotFound     = errors.New("not found")    // 404
	ErrConflict     = errors.New("conflict")     // username/email taken
	ErrUnauthorized = errors.New("unauthorized") // 401
)
