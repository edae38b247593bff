package cache

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable reports that a store backend could not be reached.
// The facade treats it as a cache miss and falls through to the provider;
// it must never surface to callers as fatal.
var ErrStorageUnavailable = errors.New("cache storage unavailable")

// SerializationError reports an entry payload that could not be encoded or
// decoded. Stores discard the offending entry and treat the access as a miss.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cache entry %s: serialization failed: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// InputError reports fingerprint input that cannot be canonically
// serialized. It is fatal for the affected call only.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("fingerprint input %s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }
