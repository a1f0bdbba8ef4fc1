package models

import "errors"

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)
