package visual

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-duplicate-finder/internal/blockhash"
	"image-duplicate-finder/internal/db"
	"image-duplicate-finder/internal/scanner"
)

func digestFromHex(t *testing.T, hx string) blockhash.Digest {
	t.Helper()
	d, err := blockhash.Parse(hx)
	require.NoError(t, err)
	return d
}

func TestClusterDigests(t *testing.T) {
	t.Parallel()

	entries := []fileDigest{
		{file: scanner.ImageFile{Name: "a.jpg", Path: "/a.jpg"}, digest: digestFromHex(t, "ff00ff00ff00ff00")},
		{file: scanner.ImageFile{Name: "b.jpg", Path: "/b.jpg"}, digest: digestFromHex(t, "ff00ff00ff00ff01")}, // 1 bit off a
		{file: scanner.ImageFile{Name: "c.jpg", Path: "/c.jpg"}, digest: digestFromHex(t, "ff00ff00ff00ff03")}, // 2 bits off a
		{file: scanner.ImageFile{Name: "d.jpg", Path: "/d.jpg"}, digest: digestFromHex(t, "00ff00ff00ff00ff")}, // far away
	}

	groups := clusterDigests(entries, 4)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Files, 3)
	assert.Equal(t, 2, groups[0].MaxDistance)
	assert.Contains(t, groups[0].BaseName, "a.jpg")
}

func TestClusterDigestsNoMatches(t *testing.T) {
	t.Parallel()

	entries := []fileDigest{
		{file: scanner.ImageFile{Path: "/a"}, digest: digestFromHex(t, "ffffffffffffffff")},
		{file: scanner.ImageFile{Path: "/b"}, digest: digestFromHex(t, "0000000000000000")},
	}

	assert.Nil(t, clusterDigests(entries, 8))
	assert.Nil(t, clusterDigests(entries[:1], 8))
}

func writePNG(t *testing.T, path string, v uint8) scanner.ImageFile {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	return scanner.ImageFile{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    info.Size(),
		Type:    "png",
		ModTime: info.ModTime(),
	}
}

func TestComputeFileDigestBlockhash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := writePNG(t, filepath.Join(dir, "white.png"), 255)

	d, err := ComputeFileDigest(f, AlgoBlockhash, blockhash.Size64)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("f", 16), d.String())
}

func TestComputeFileDigestPNM(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "white.pgm")
	data := append([]byte("P5\n4 4\n255\n"), bytes.Repeat([]byte{255}, 16)...)
	require.NoError(t, os.WriteFile(path, data, 0644))

	info, err := os.Stat(path)
	require.NoError(t, err)
	f := scanner.ImageFile{Name: "white.pgm", Path: path, Size: info.Size(), Type: "pnm", ModTime: info.ModTime()}

	d, err := ComputeFileDigest(f, AlgoBlockhash, blockhash.Size16)
	require.NoError(t, err)
	assert.Equal(t, "ffff", d.String())
}

func TestComputeFileDigestPHash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := writePNG(t, filepath.Join(dir, "gray.png"), 128)

	d, err := ComputeFileDigest(f, AlgoPHash, blockhash.Size64)
	require.NoError(t, err)
	assert.Equal(t, blockhash.Size64, d.Size())
}

func TestComputeFileDigestUnreadable(t *testing.T) {
	t.Parallel()

	f := scanner.ImageFile{Name: "gone.png", Path: filepath.Join(t.TempDir(), "gone.png")}
	_, err := ComputeFileDigest(f, AlgoBlockhash, blockhash.Size64)
	assert.Error(t, err)
}

func TestProcessAndFindDuplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []scanner.ImageFile{
		writePNG(t, filepath.Join(dir, "white1.png"), 255),
		writePNG(t, filepath.Join(dir, "white2.png"), 255),
		writePNG(t, filepath.Join(dir, "black.png"), 0),
	}

	cache, err := db.NewCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	opts := Options{Algorithm: AlgoBlockhash, Size: blockhash.Size64, MaxDistance: 0, Workers: 2}

	var lastProgress float64
	ProcessDigests(files, cache, opts, func(p float64) { lastProgress = p })
	assert.InDelta(t, 100, lastProgress, 0.01)

	// Second pass must be served from cache (identical results either way).
	ProcessDigests(files, cache, opts, nil)

	groups := FindDuplicates(files, cache, opts)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Files, 2)
	assert.Equal(t, 0, groups[0].MaxDistance)
}

func TestAlgorithmValidAndBits(t *testing.T) {
	t.Parallel()

	assert.True(t, AlgoBlockhash.Valid())
	assert.True(t, AlgoPHash.Valid())
	assert.False(t, Algorithm("md5").Valid())

	assert.Equal(t, 256, AlgoBlockhash.Bits(blockhash.Size256))
	assert.Equal(t, 64, AlgoPHash.Bits(blockhash.Size256))
}

// Guard against the progress callback racing the worker pool: run with more
// workers than files and a callback that sleeps briefly.
func TestProcessDigestsSmallBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []scanner.ImageFile{writePNG(t, filepath.Join(dir, "only.png"), 10)}

	cache, err := db.NewCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	opts := Options{Algorithm: AlgoBlockhash, Size: blockhash.Size16, Workers: 8}
	ProcessDigests(files, cache, opts, func(float64) { time.Sleep(time.Millisecond) })

	hx, ok := cache.GetDigest(files[0].Path, string(AlgoBlockhash), 16, files[0].ModTime.Format(time.RFC3339), files[0].Size)
	require.True(t, ok)
	assert.Len(t, hx, 4)
}
