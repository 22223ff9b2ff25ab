package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetNotAllowed    = errors.New("progress reset is not allowed for this backend")
)
