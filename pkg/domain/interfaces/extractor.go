package interfaces

import "context"

// DocumentExtractor turns a stored attachment into plain text.
// Unrecognized extensions fail with ErrUnsupportedType; an absent path
// fails with ErrNotFound.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
