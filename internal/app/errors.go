package app

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks caller errors caught before any outbound call.
	ErrValidation = errors.New("validation failed")
	// ErrGeneration marks upstream text-generation failures. No inquiry
	// record exists when this is returned.
	ErrGeneration = errors.New("guide generation failed")
	// ErrPersistence marks inquiry-store failures.
	ErrPersistence = errors.New("inquiry store failed")

	// ErrMissingFields is returned when query or queryType is absent.
	ErrMissingFields = fmt.Errorf("%w: query and queryType are required", ErrValidation)
	// ErrInvalidQueryType is returned for categories outside the closed set.
	ErrInvalidQueryType = fmt.Errorf("%w: invalid queryType", ErrValidation)
)
