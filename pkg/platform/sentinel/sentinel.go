package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors. They state
// what is true about a resource, not whether the caller's input was valid:
//
//   - ErrNotFound: the row/record does not exist
//   - ErrConflict: a uniqueness or concurrent-update conflict
//   - ErrInvalidState: the entity is in the wrong state for the mutation
//   - ErrExpired: a token or intent passed its TTL
//   - ErrUnavailable: backing service temporarily unreachable
//
// Validation failures belong to pkg/domain-errors, not here.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")
	ErrUnavailable  = errors.New("unavailable")
)
