package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

func newTestService(maxSize int64) (*Service, afero.Fs) {
	fs := afero.NewMemMapFs()
	svc := New(fs, config.StorageConfig{
		BaseURL:     "http://localhost:8080/storage/",
		AllowedExts: []string{"png", ".JPG"},
		MaxSize:     maxSize,
	}, logger.Discard())
	return svc, fs
}

func TestSaveOpenDelete(t *testing.T) {
	svc, fs := newTestService(1024)
	ctx := context.Background()

	name, err := svc.Save(ctx, "cover.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	exists, _ := afero.Exists(fs, name)
	assert.True(t, exists)

	f, info, err := svc.Open(name)
	require.NoError(t, err)
	body, _ := io.ReadAll(f)
	f.Close()
	assert.Equal(t, "image-bytes", string(body))
	assert.EqualValues(t, len("image-bytes"), info.Size())

	require.NoError(t, svc.Delete(ctx, name))
	exists, _ = afero.Exists(fs, name)
	assert.False(t, exists)
	assert.NoError(t, svc.Delete(ctx, name))
}

func TestSave_RejectsExtension(t *testing.T) {
	svc, _ := newTestService(1024)

	_, err := svc.Save(context.Background(), "script.sh", strings.NewReader("x"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFile)

	_, err = svc.Save(context.Background(), "photo.jpg", strings.NewReader("x"))
	assert.NoError(t, err)
}

func TestSave_RejectsOversizedAndEmpty(t *testing.T) {
	svc, fs := newTestService(4)

	_, err := svc.Save(context.Background(), "a.png", bytes.NewReader([]byte("12345")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFile)

	_, err = svc.Save(context.Background(), "a.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFile)

	files, _ := afero.ReadDir(fs, "/")
	assert.Empty(t, files)
}

func TestOpen_RejectsTraversal(t *testing.T) {
	svc, _ := newTestService(1024)

	_, _, err := svc.Open("../etc/passwd")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, _, err = svc.Open("missing.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestURLRoundTrip(t *testing.T) {
	svc, _ := newTestService(1024)

	url := svc.URL("abc.png")
	assert.Equal(t, "http://localhost:8080/storage/abc.png", url)
	assert.Equal(t, "abc.png", svc.NameFromURL(url))
	assert.Empty(t, svc.NameFromURL("https://cdn.example.com/abc.png"))
	assert.Empty(t, svc.URL(""))
}
