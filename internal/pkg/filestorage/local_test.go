package filestorage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/", zerolog.Nop())
	require.NoError(t, err)
	return ls, dir
}

func TestSaveAndDeleteImage(t *testing.T) {
	ls, dir := newStorage(t)

	url, err := ls.SaveImage(strings.NewReader("png-bytes"), "poster.PNG", "events/7")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/events/7/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, ls.Delete(url))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.Delete(url), "deleting twice is fine")
	assert.NoError(t, ls.Delete("https://elsewhere.example/x.png"))
}

func TestSaveImageRejects(t *testing.T) {
	ls, _ := newStorage(t)

	_, err := ls.SaveImage(strings.NewReader("x"), "notes.pdf", "events")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := bytes.NewReader(make([]byte, MaxImageSize+1))
	_, err = ls.SaveImage(big, "huge.jpg", "events")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveImageKeepsInsideBase(t *testing.T) {
	ls, dir := newStorage(t)

	url, err := ls.SaveImage(strings.NewReader("x"), "a.gif", "../../escape")
	require.NoError(t, err)
	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	assert.NoError(t, err)
}
