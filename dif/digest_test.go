package dif

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestFileKnownValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.jpg")
	mustWrite(t, path, "hello")

	finder := newTestFinder(t, Options{})
	digest, err := finder.digestFile(context.Background(), path)
	require.NoError(t, err)

	// sha256("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", digest)
}

func TestDigestFileChunkSizeIrrelevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	mustWrite(t, path, "some longer content that spans several tiny chunks")

	whole := newTestFinder(t, Options{})
	tiny := newTestFinder(t, Options{ChunkSize: 3})

	a, err := whole.digestFile(context.Background(), path)
	require.NoError(t, err)
	b, err := tiny.digestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDigestFileMissing(t *testing.T) {
	finder := newTestFinder(t, Options{})

	_, err := finder.digestFile(context.Background(), filepath.Join(t.TempDir(), "vanished.jpg"))
	require.ErrorIs(t, err, ErrFileAccess)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDigestFileCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.jpg")
	mustWrite(t, path, "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finder := newTestFinder(t, Options{})
	_, err := finder.digestFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDigestAlgorithms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.jpg")
	mustWrite(t, path, "same input")

	tests := []struct {
		algorithm string
		hexLen    int
	}{
		{"sha256", 64},
		{"sha1", 40},
		{"md5", 32},
		{"highway", 64},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			finder := newTestFinder(t, Options{Algorithm: tt.algorithm})

			first, err := finder.digestFile(context.Background(), path)
			require.NoError(t, err)
			assert.Len(t, first, tt.hexLen)

			second, err := finder.digestFile(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestNewFinderUnknownAlgorithm(t *testing.T) {
	_, err := NewDuplicateImageFinder(Options{Algorithm: "crc13"})
	assert.Error(t, err)
}

func TestNewFinderInvalidExcludePattern(t *testing.T) {
	_, err := NewDuplicateImageFinder(Options{Excludes: []string{"[broken"}})
	assert.Error(t, err)
}
