package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (duplicate user email or duplicate review pair). The
// constraints back up the service-level pre-checks, which are racy
// under concurrent requests.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

func mapInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
