package store

import "errors"

// ErrNotFound is returned by mutating operations that target an id with no
// record behind it. Plain reads return (nil, nil) for a miss instead.
var ErrNotFound = errors.New("record not found")

// StorageError wraps a failure of the underlying SQLite engine. The store
// never retries; callers decide what to do with the failure.
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
