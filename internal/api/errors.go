package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches a 401 from the API.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches a 404 from the API.
	ErrNotFound = errors.New("not found")

	// ErrValidation matches rejected input, either a 400/422 from the API or
	// a payload refused before sending.
	ErrValidation = errors.New("validation failed")
)

// Error is returned for non-2xx responses and for envelopes with success=false.
type Error struct {
	StatusCode int
	// Message is the server supplied msg, possibly empty.
	Message string
	Body    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

// Is lets errors.Is match the sentinel errors by status code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// Detail returns the message worth showing to a user: the server msg when
// there is one, the validation detail for refused payloads, else fallback.
func Detail(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if errors.Is(err, ErrValidation) {
		return err.Error()
	}
	return fallback
}
