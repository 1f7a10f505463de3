package usecase

import "errors"

var (
	ErrEmailInUse         = errors.New("email in use")
	ErrClientNotFound     = errors.New("client not found")
	ErrAlreadyVerified    = errors.New("verification has already been passed")
	ErrInvalidCredentials = errors.New("email or password is wrong")
	ErrEmailNotVerified   = errors.New("email not verified")
)
