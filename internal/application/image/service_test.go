package image

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/infrastructure/storage"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

type fakeTarget struct {
	image string
	err   error
}

func (f *fakeTarget) SetImage(_ context.Context, _ string, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	previous := f.image
	f.image = url
	return previous, nil
}

func newTestService() (*Service, *storage.Service, afero.Fs) {
	fs := afero.NewMemMapFs()
	store := storage.New(fs, config.StorageConfig{BaseURL: "/storage", AllowedExts: []string{"png"}}, logger.Discard())
	return NewService(store, logger.Discard()), store, fs
}

func countFiles(t *testing.T, fs afero.Fs) int {
	t.Helper()
	files, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	return len(files)
}

func TestReplace_DeletesPreviousFile(t *testing.T) {
	svc, store, fs := newTestService()
	target := &fakeTarget{}
	ctx := context.Background()

	first, err := svc.Replace(ctx, target, "1", Upload{Filename: "a.png", Content: strings.NewReader("one")})
	require.NoError(t, err)
	assert.Equal(t, first, target.image)
	assert.Equal(t, 1, countFiles(t, fs))

	second, err := svc.Replace(ctx, target, "1", Upload{Filename: "b.png", Content: strings.NewReader("two")})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, countFiles(t, fs))

	exists, _ := afero.Exists(fs, store.NameFromURL(first))
	assert.False(t, exists)
}

func TestReplace_TargetFailureRemovesNewFile(t *testing.T) {
	svc, _, fs := newTestService()
	target := &fakeTarget{err: apperrors.ErrNotFound}

	_, err := svc.Replace(context.Background(), target, "9", Upload{Filename: "a.png", Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, countFiles(t, fs))
}

func TestReplace_KeepsExternalPreviousImage(t *testing.T) {
	svc, _, _ := newTestService()
	target := &fakeTarget{image: "https://cdn.example.com/cover.png"}

	url, err := svc.Replace(context.Background(), target, "1", Upload{Filename: "a.png", Content: strings.NewReader("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/storage/"))
}

func TestReplace_RejectsExtension(t *testing.T) {
	svc, _, fs := newTestService()
	target := &fakeTarget{}

	_, err := svc.Replace(context.Background(), target, "1", Upload{Filename: "a.exe", Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFile)
	assert.Empty(t, target.image)
	assert.Equal(t, 0, countFiles(t, fs))
}
