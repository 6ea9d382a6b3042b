package internal

import (
	"context"
	"io"
)

// Repository is where run snapshots land (local filesystem, object
// storage). Implementations scope writes under a per-run prefix.
type Repository interface {
	Write(ctx context.Context, path string, reader io.Reader) error
	Flush() error
}
