package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means the provider rejected the API key (HTTP 401).
	ErrAuth = errors.New("invalid API key")

	// ErrNotFound means the provider does not know the requested city (HTTP 404).
	ErrNotFound = errors.New("city not found")
)

// NetworkError covers transport failures and any provider error that is
// neither ErrAuth nor ErrNotFound.
type NetworkError struct {
	// Message is the provider's explanation, or the transport error text.
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("weather provider: %s", e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Err }
