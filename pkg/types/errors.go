package types

import "errors"

// Registry and store errors. Callers match with errors.Is; the store and
// registry wrap these with context via fmt.Errorf and %w.
var (
	// ErrDuplicateName is returned when creating or registering an entity
	// whose lower-cased name is already taken: a project in the registry,
	// or a collection inside a project store.
	ErrDuplicateName = errors.New("name already exists")

	// ErrInvalidProject is returned when a supplied folder does not exist
	// or cannot be opened as a valid project store.
	ErrInvalidProject = errors.New("invalid project folder")

	// ErrUnknownProject is returned when an operation references a project
	// name absent from the registry.
	ErrUnknownProject = errors.New("project not found")

	// ErrNotFound is returned when an entity lookup matches no record.
	ErrNotFound = errors.New("entity not found")

	// ErrStoreClosed is returned when an operation is attempted on a
	// closed metadata store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidData is returned when an entity fails validation before
	// persistence.
	ErrInvalidData = errors.New("invalid entity data")
)
