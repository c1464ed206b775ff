package urlproxy

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrMissingParameter indicates a required query parameter was absent or empty
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrSigningFailed indicates the storage backend could not produce a signed URL
	ErrSigningFailed = errors.New("signing failed")
)

// MissingParameterError names the query parameter that failed validation
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("Missing required parameter: %s", e.Name)
}

func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameter
}

// StorageError carries the code and message reported by the object store
type StorageError struct {
	Key     string
	Code    string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error for key %s: %s: %s", e.Key, e.Code, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsMissingParameter returns true if the error is a client input error
func IsMissingParameter(err error) bool {
	return errors.Is(err, ErrMissingParameter)
}

// AsStorageError extracts a StorageError from the chain, if any
func AsStorageError(err error) (*StorageError, bool) {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr, true
	}
	return nil, false
}
