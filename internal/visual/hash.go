package visual

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"image-duplicate-finder/internal/archive"
	"image-duplicate-finder/internal/blockhash"
	"image-duplicate-finder/internal/pnm"
	"image-duplicate-finder/internal/scanner"
)

// Algorithm selects the fingerprint used for visual comparison.
type Algorithm string

const (
	AlgoBlockhash Algorithm = "blockhash"
	AlgoPHash     Algorithm = "phash"
	AlgoDHash     Algorithm = "dhash"
)

// Valid reports whether a is a known algorithm name.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgoBlockhash, AlgoPHash, AlgoDHash:
		return true
	}
	return false
}

// Bits returns the digest width for the algorithm. The goimagehash
// algorithms are fixed at 64 bits; blockhash honors the configured size.
func (a Algorithm) Bits(size blockhash.Size) int {
	if a == AlgoBlockhash {
		return size.Bits()
	}
	return 64
}

// ComputeFileDigest produces the digest for one scanned file. Containers are
// fingerprinted through their largest embedded image. All algorithms are
// normalized to a blockhash.Digest so that storage, hex encoding and Hamming
// distance are uniform (the 64-bit goimagehash values pack big-endian).
func ComputeFileDigest(f scanner.ImageFile, algo Algorithm, size blockhash.Size) (blockhash.Digest, error) {
	data, name, err := loadImageData(f)
	if err != nil {
		return blockhash.Digest{}, err
	}

	if pnm.IsPNMFile(name) {
		pix, err := pnm.DecodeBytes(data)
		if err != nil {
			return blockhash.Digest{}, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		if algo == AlgoBlockhash {
			return blockhash.Compute(pix, size), nil
		}
		return hashWithGoimagehash(pixmapToImage(pix), algo)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return blockhash.Digest{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	if algo == AlgoBlockhash {
		return blockhash.Compute(blockhash.FromImage(img), size), nil
	}
	return hashWithGoimagehash(img, algo)
}

func loadImageData(f scanner.ImageFile) ([]byte, string, error) {
	if f.IsContainer() {
		return archive.FindLargestImage(f.Path)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, "", err
	}
	return data, f.Name, nil
}

func hashWithGoimagehash(img image.Image, algo Algorithm) (blockhash.Digest, error) {
	var h *goimagehash.ImageHash
	var err error

	switch algo {
	case AlgoPHash:
		h, err = goimagehash.PerceptionHash(img)
	case AlgoDHash:
		h, err = goimagehash.DifferenceHash(img)
	default:
		return blockhash.Digest{}, fmt.Errorf("unknown algorithm %q", algo)
	}
	if err != nil {
		return blockhash.Digest{}, fmt.Errorf("failed to generate %s: %w", algo, err)
	}

	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], h.GetHash())
	return blockhash.New(blockhash.Size64, raw[:]), nil
}

func pixmapToImage(p *pnm.Pixmap) image.Image {
	w, h := p.Dimensions()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := p.RGBA(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img
}
