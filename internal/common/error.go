// Package common defines shared constants and sentinel errors used across
// the chat client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrStorageCorruption = errors.New("storage corruption")

	// User input errors.
	ErrValidation   = errors.New("validation error")
	ErrVerification = errors.New("verification failed")

	// Session errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Media errors.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaTooLarge    = errors.New("media too large")
)
