package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("wrong credentials")

	// Returned for any token that can't be trusted: bad signature,
	// malformed payload, expired, or a refresh token that was consumed
	// already (replay).
	ErrInvalidToken = errors.New("invalid token")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// The signing secret is a process-wide startup requirement. Seeing
	// this error on a request path means the service is misconfigured.
	ErrMissingSecret = errors.New("token signing secret is not set")
)
