package store

import "errors"

// ErrNotFound reports an update aimed at a movement id that does not exist.
// A missing id is a caller error, not a storage failure, so it never comes
// wrapped in a StorageError.
var ErrNotFound = errors.New("movement not found")

// StorageError wraps any failure of the underlying medium (file
// inaccessible, write failed, corruption). Callers surface it to the user
// and retry manually; no operation retries on its own.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
