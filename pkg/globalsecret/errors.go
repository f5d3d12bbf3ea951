package globalsecret

import (
	"errors"
	"fmt"
)

// ErrPoisoned matches the error returned by every access to a bundle whose
// initialization failed.
var ErrPoisoned = errors.New("secret bundle initialization failed")

// FetchError reports that the remote store could not be reached or refused
// the request.
type FetchError struct {
	Secret string
	Store  string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Store == "" {
		return fmt.Sprintf("fetch secret %q: %v", e.Secret, e.Err)
	}
	return fmt.Sprintf("fetch secret %q from %s: %v", e.Secret, e.Store, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError reports a payload that does not satisfy the bundle's shape.
// It never carries secret values.
type DecodeError struct {
	Secret string
	// Key is the offending payload key, empty when the payload as a whole is
	// malformed.
	Key    string
	Reason string
	// Problems lists every shape violation found, when there were several.
	Problems []string
	Err      error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode secret %q: ", e.Secret)
	if e.Key != "" {
		msg += fmt.Sprintf("key %q: ", e.Key)
	}
	msg += e.Reason
	if extra := len(e.Problems) - 1; extra > 0 {
		msg += fmt.Sprintf(" (and %d more)", extra)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InitializationError is cached by a bundle whose first load failed and is
// returned to every caller from then on.
type InitializationError struct {
	Secret string
	Err    error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("secret bundle %s unavailable: %v", e.Secret, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPoisoned.
func (e *InitializationError) Is(target error) bool {
	return target == ErrPoisoned
}
