package filestorage

import (
	"errors"
	"io"
)

var (
	// ErrUnsupportedType is returned for uploads that are not images
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned for uploads above MaxImageSize
	ErrTooLarge = errors.New("file too large")
)

// ImageStorage stores uploaded images and returns the URL they are served at
type ImageStorage interface {
	// SaveImage stores r under dir, naming the file after a random uuid and
	// the extension of originalName.
	SaveImage(r io.Reader, originalName, dir string) (string, error)

	// Delete removes a previously returned URL. Unknown files are ignored.
	Delete(fileURL string) error
}
