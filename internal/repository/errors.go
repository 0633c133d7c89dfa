package repository

import "errors"

var (
	// ErrInvalidImageURL indicates a reference that cannot be parsed or is empty
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrUnsupportedScheme indicates no source is registered for the scheme
	ErrUnsupportedScheme = errors.New("unsupported image source")
)
