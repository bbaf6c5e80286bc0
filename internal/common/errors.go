// Package common defines shared constants and sentinel errors used across
// stargram layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Upload pipeline errors.
	ErrorMalformedUpload  = errors.New("malformed upload")
	ErrorUnsupportedImage = errors.New("unsupported image format")
	ErrorPayloadTooLarge  = errors.New("payload too large")
)
