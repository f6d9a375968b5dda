package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/utils/safe"
)

// maxDocumentBytes caps how much of one attachment is fed into a prompt
const maxDocumentBytes = 512 * 1024

var textExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".csv":      {},
	".json":     {},
	".log":      {},
}

// Extractor reads attachment content as plain text. Paths with a gs://
// scheme are read from Cloud Storage, everything else from the local
// filesystem.
type Extractor struct {
	gcs *storage.Client
}

var _ interfaces.DocumentExtractor = &Extractor{}

type Option func(*Extractor)

// WithGCS enables gs:// paths using the given client
func WithGCS(client *storage.Client) Option {
	return func(e *Extractor) {
		e.gcs = client
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, "/")))
	if _, ok := textExtensions[ext]; !ok {
		return "", goerr.Wrap(types.ErrUnsupportedType, "unsupported document type",
			goerr.V("path", path), goerr.V("extension", ext))
	}

	if strings.HasPrefix(path, "gs://") {
		return e.readObject(ctx, path)
	}
	return e.readFile(path)
}

func (e *Extractor) readFile(path string) (string, error) {
	// #nosec G304 -- path is a stored attachment location, not user input
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", goerr.Wrap(types.ErrNotFound, "document not found", goerr.V("path", path))
		}
		return "", goerr.Wrap(err, "failed to open document", goerr.V("path", path))
	}
	defer safe.Close(context.Background(), f)

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read document", goerr.V("path", path))
	}

	return string(data), nil
}

func (e *Extractor) readObject(ctx context.Context, path string) (string, error) {
	if e.gcs == nil {
		return "", goerr.Wrap(types.ErrCapability, "cloud storage is not configured", goerr.V("path", path))
	}

	trimmed := strings.TrimPrefix(path, "gs://")
	bucket, object, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || object == "" {
		return "", goerr.Wrap(types.ErrValidation, "invalid storage path", goerr.V("path", path))
	}

	reader, err := e.gcs.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", goerr.Wrap(types.ErrNotFound, "document not found", goerr.V("path", path))
		}
		return "", goerr.Wrap(err, "failed to open storage object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	defer safe.Close(ctx, reader)

	data, err := io.ReadAll(io.LimitReader(reader, maxDocumentBytes))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read storage object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}

	return string(data), nil
}
