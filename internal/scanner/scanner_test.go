package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-duplicate-finder/internal/scanner"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644))
}

func TestScanDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")
	writeFile(t, dir, "b.PNG")
	writeFile(t, dir, "c.cbz")
	writeFile(t, dir, "notes.txt")

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeFile(t, sub, "d.webp")

	files, err := scanner.ScanDirectory(dir, true)
	require.NoError(t, err)
	require.Len(t, files, 4)

	types := map[string]string{}
	for _, f := range files {
		types[f.Name] = f.Type
	}
	assert.Equal(t, "jpg", types["a.jpg"])
	assert.Equal(t, "png", types["b.PNG"])
	assert.Equal(t, "zip", types["c.cbz"])
	assert.Equal(t, "webp", types["d.webp"])
}

func TestScanDirectoryNonRecursive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeFile(t, sub, "b.jpg")

	files, err := scanner.ScanDirectory(dir, false)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.jpg", files[0].Name)
}

func TestBurstSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		burst bool
		base  string
		num   string
	}{
		{"IMG_1234 (2).jpg", true, "img_1234", "2"},
		{"photo_copy3.png", true, "photo", "3"},
		{"photo copy.png", true, "photo", ""},
		{"IMG_1234.jpg", false, "", ""},
		{"vacation (final).jpg", false, "", ""},
	}

	for _, tt := range tests {
		f := scanner.ImageFile{Name: tt.name}
		burst, base, num := f.BurstSuffix()
		assert.Equal(t, tt.burst, burst, tt.name)
		if tt.burst {
			assert.Equal(t, tt.base, base, tt.name)
			assert.Equal(t, tt.num, num, tt.name)
		}
	}
}

func TestGroupBySize(t *testing.T) {
	t.Parallel()

	files := []scanner.ImageFile{
		{Name: "a.jpg", Size: 100},
		{Name: "b.jpg", Size: 100},
		{Name: "c.jpg", Size: 200},
	}

	groups := scanner.GroupBySize(files)
	assert.Len(t, groups, 2)
	assert.Len(t, groups[100], 2)
	assert.Len(t, groups[200], 1)
}

func TestIsContainer(t *testing.T) {
	t.Parallel()

	assert.True(t, scanner.ImageFile{Type: "zip"}.IsContainer())
	assert.True(t, scanner.ImageFile{Type: "rar"}.IsContainer())
	assert.True(t, scanner.ImageFile{Type: "7z"}.IsContainer())
	assert.False(t, scanner.ImageFile{Type: "jpg"}.IsContainer())
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", scanner.FormatBytes(512))
	assert.Equal(t, "1.0 KB", scanner.FormatBytes(1024))
	assert.Equal(t, "1.5 MB", scanner.FormatBytes(1536*1024))
}
