package storage

import (
	"context"
	"io"
)

// FileStorage stores mark photos and user avatars
type FileStorage interface {
	// SaveFile stores the content under a generated name and returns the
	// reference to persist (public URL or object key).
	SaveFile(ctx context.Context, file io.Reader, filename string, contentType string) (string, error)
	// DeleteFile removes a previously saved file; missing files are not an error
	DeleteFile(ctx context.Context, ref string) error
}
