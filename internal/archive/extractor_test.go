package archive_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-duplicate-finder/internal/archive"
)

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestFindLargestImageZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "book.cbz")
	writeZip(t, path, map[string][]byte{
		"cover.jpg":  bytes.Repeat([]byte{1}, 10),
		"page01.png": bytes.Repeat([]byte{2}, 200),
		"info.txt":   bytes.Repeat([]byte{3}, 500),
	})

	data, name, err := archive.FindLargestImage(path)
	require.NoError(t, err)
	assert.Equal(t, "page01.png", name)
	assert.Len(t, data, 200)
}

func TestFindLargestImageNoImages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "docs.zip")
	writeZip(t, path, map[string][]byte{"readme.txt": []byte("hi")})

	_, _, err := archive.FindLargestImage(path)
	assert.Error(t, err)
}

func TestFindLargestImageUnsupported(t *testing.T) {
	t.Parallel()

	_, _, err := archive.FindLargestImage("whatever.tar")
	assert.Error(t, err)
}

func TestListImages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mixed.zip")
	writeZip(t, path, map[string][]byte{
		"a.jpg":    {1},
		"b.webp":   {2},
		"skip.txt": {3},
	})

	names, err := archive.ListImages(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.jpg", "b.webp"}, names)
}
