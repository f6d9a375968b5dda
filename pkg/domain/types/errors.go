package types

import "errors"

// Error taxonomy shared across the engine. Callers match with errors.Is;
// goerr wrapping preserves the sentinel through the chain.
var (
	// ErrNotFound: a referenced entity is absent. Terminal, never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: an illegal lifecycle transition was attempted.
	// The ticket record is left untouched.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrValidation: the task input payload is missing a required field.
	ErrValidation = errors.New("validation failed")

	// ErrDispatch: no handler exists for the requested task kind.
	ErrDispatch = errors.New("unknown task kind")

	// ErrCapability: an external collaborator failed. The message is
	// preserved verbatim on the ticket for operator diagnosis.
	ErrCapability = errors.New("capability failure")

	// ErrUnsupportedType: the document extractor does not recognize the
	// file type.
	ErrUnsupportedType = errors.New("unsupported document type")
)
