// Package objstore provides read access to the object store holding the
// dataset. Implementations paginate listing calls internally so callers see
// complete result sets regardless of span.
package objstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates that a requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Store is a read-only object-store handle. Implementations must be safe
// for concurrent use.
type Store interface {
	// ListCommonPrefixes returns the distinct key prefixes directly under
	// prefix, grouped by delimiter, in lexicographic order.
	ListCommonPrefixes(ctx context.Context, prefix, delimiter string) ([]string, error)

	// ListObjects returns all object keys under prefix, in lexicographic
	// order. A prefix with no objects yields an empty result, not an error.
	ListObjects(ctx context.Context, prefix string) ([]string, error)

	// Download returns the content of the object at key. The caller must
	// close the returned reader. A missing object yields ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}
