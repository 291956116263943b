package sentinel

import "errors"

// Sentinel errors returned by stores. Services translate them into coded
// domain errors before they reach a handler.
//
//   - ErrNotFound: the row or entity does not exist
//   - ErrConflict: a uniqueness or foreign key constraint rejected the write
//   - ErrStillReferenced: a delete was refused because rows still point at the entity
//   - ErrUnavailable: the backing service could not be reached
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrStillReferenced = errors.New("still referenced")
	ErrUnavailable     = errors.New("unavailable")
)
