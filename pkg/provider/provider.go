package provider

import (
	"context"
	"time"
)

// Fetcher retrieves a secret blob by name from a remote secret store.
type Fetcher interface {
	// Name identifies the store for logs and error messages.
	Name() string

	// Fetch returns the raw payload stored under secretName.
	//
	// Implementations must never log the returned value, should honor ctx
	// cancellation, and should return NotFoundError or AuthError where they
	// apply.
	Fetch(ctx context.Context, secretName string) (SecretBlob, error)
}

// Validator is implemented by fetchers that can verify connectivity and
// credentials without reading a secret.
type Validator interface {
	Validate(ctx context.Context) error
}

// SecretBlob is the raw response of the remote store for one secret name.
type SecretBlob struct {
	// Value is the textual payload. Never log it.
	Value string

	// Version identifies the version that was returned, if the store has one.
	Version string

	// CreatedAt is when the returned version was created. Zero if unknown.
	CreatedAt time.Time
}

// NotFoundError indicates that a requested secret does not exist in the store.
type NotFoundError struct {
	// Provider is the name of the store where the secret was not found.
	Provider string

	// Key is the secret name that could not be found.
	Key string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "secret not found: " + e.Key + " in " + e.Provider
}

// AuthError indicates that authentication to the store failed or the
// credentials lack permission for the operation.
type AuthError struct {
	// Provider is the name of the store that rejected the request.
	Provider string

	// Message provides details about the failure.
	Message string
}

// Error implements the error interface.
func (e AuthError) Error() string {
	return "authentication failed for " + e.Provider + ": " + e.Message
}
