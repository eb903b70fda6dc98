package filestorage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxImageSize caps a single upload
const MaxImageSize = 5 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
	logger   zerolog.Logger
}

// NewLocalStorage creates the base directory if needed. Returned URLs are
// baseURL joined with the relative file path.
func NewLocalStorage(basePath, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger.With().Str("component", "filestorage").Logger(),
	}, nil
}

// SaveImage implements ImageStorage
func (ls *LocalStorage) SaveImage(r io.Reader, originalName, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	dir = path.Clean("/" + filepath.ToSlash(dir))[1:]
	fullDir := filepath.Join(ls.basePath, filepath.FromSlash(dir))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(fullDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	n, err := io.Copy(dst, io.LimitReader(r, MaxImageSize+1))
	closeErr := dst.Close()
	if err == nil && n > MaxImageSize {
		err = fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, MaxImageSize)
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := path.Join(dir, name)
	ls.logger.Info().Str("original", originalName).Str("path", rel).Int64("bytes", n).Msg("Image saved")
	return ls.baseURL + "/" + rel, nil
}

// Delete implements ImageStorage
func (ls *LocalStorage) Delete(fileURL string) error {
	rel, ok := strings.CutPrefix(fileURL, ls.baseURL+"/")
	if !ok || rel == "" {
		return nil
	}
	rel = path.Clean("/" + rel)[1:]
	if rel == "" {
		return nil
	}

	err := os.Remove(filepath.Join(ls.basePath, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
