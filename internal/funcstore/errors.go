package funcstore

import "errors"

var (
	// ErrNotFound means no top-level function with the addressed name exists.
	ErrNotFound = errors.New("function not found")

	// ErrAlreadyExists means a function with the proposed name is already stored.
	ErrAlreadyExists = errors.New("function already exists")

	// ErrInvalidDefinition means the submitted code does not parse to exactly
	// one top-level function declaration.
	ErrInvalidDefinition = errors.New("invalid function definition")

	// ErrNameMismatch means the declared function name differs from the
	// addressed name. Renaming through update is unsupported.
	ErrNameMismatch = errors.New("function name mismatch")

	// ErrStorageCorrupt means the backing tools file itself no longer parses.
	// The store never writes such a file; this signals out-of-band damage.
	ErrStorageCorrupt = errors.New("tools file is not valid Go source")
)
