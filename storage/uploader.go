package storage

import (
	"context"
	"io"
)

// UploadInput describes one object to store. The uploader derives the
// final key from the prefix and content type, so callers never collide on
// extensions.
type UploadInput struct {
	KeyPrefix   string
	ContentType string
	Body        io.Reader
}

type FileUploader interface {
	// Upload stores the object and returns the key it was written under.
	Upload(ctx context.Context, input UploadInput) (string, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
