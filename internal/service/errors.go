package service

import (
	"errors"

	"tinylink/internal/shortcode"
)

// Client-facing error taxonomy. Handlers translate these into HTTP
// statuses; anything else is an internal storage failure and stays opaque.
var (
	ErrInvalidTarget = errors.New("invalid or missing target URL, must include http(s)://")
	ErrInvalidCode   = errors.New("custom code invalid, must be 6-8 alphanumeric characters")
	ErrCodeConflict  = errors.New("code already exists")
	ErrNotFound      = errors.New("link not found")

	// ErrGenerationExhausted is a server-side failure, not a client error.
	ErrGenerationExhausted = shortcode.ErrExhausted
)
