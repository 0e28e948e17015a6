// Package blockhash computes fixed-length perceptual fingerprints from raster
// pixel data, so that visually similar images yield digests with a small
// Hamming distance. It implements the blockhash algorithm (blockhash.io): the
// image is divided into an N x N grid, each block's brightness integral is
// computed exactly, and blocks are thresholded against the median of their
// band. 16-, 64-, 144- and 256-bit digests are supported.
//
// The package performs no decoding, resizing or I/O; pixel data enters
// through the PixelSource interface (see FromImage for the standard-library
// adapter). It is not a cryptographic hash.
package blockhash

import "slices"

// Hash16 computes the 16-bit digest of src.
func Hash16(src PixelSource) Digest { return Compute(src, Size16) }

// Hash64 computes the 64-bit digest of src.
func Hash64(src PixelSource) Digest { return Compute(src, Size64) }

// Hash144 computes the 144-bit digest of src.
func Hash144(src PixelSource) Digest { return Compute(src, Size144) }

// Hash256 computes the 256-bit digest of src.
func Hash256(src PixelSource) Digest { return Compute(src, Size256) }

// Compute computes the digest of src at the given size. It runs one full
// pixel scan, is pure and reentrant, and never fails for images with
// positive dimensions. It panics if size is not one of the supported values.
func Compute(src PixelSource, size Size) Digest {
	n := size.grid()
	if n == 0 {
		panic("blockhash: unsupported digest size")
	}

	width, height := src.Dimensions()

	var values []uint64
	switch pickStrategy(width, height, n) {
	case strategyAligned:
		values = valuesAligned(src, n)
	case strategyBoxFiltered:
		values = valuesBoxFiltered(src, n)
	default:
		values = valuesGeneric(src, n)
	}

	return New(size, thresholdBits(values, width, height))
}

// thresholdBits converts block values into the packed digest bytes. The
// values are split into 4 contiguous bands in block order; within each band a
// block becomes 1 when its value exceeds the band median. An exact tie
// resolves to 1 only when the value also exceeds half of the maximum possible
// block total, a fixed per-image reference that keeps ties deterministic on
// flat images. Bits are packed 8 per byte, MSB first.
func thresholdBits(values []uint64, width, height int) []byte {
	numBlocks := len(values)
	bandSize := numBlocks / 4
	halfValue := uint64(MaxBrightness) * uint64(width) * uint64(height) / 2

	out := make([]byte, numBlocks/8)
	band := make([]uint64, bandSize)

	for i := 0; i < 4; i++ {
		offset := i * bandSize

		copy(band, values[offset:offset+bandSize])
		slices.Sort(band)

		// bandSize is even for every supported grid, so the median is
		// the floored average of the two middle elements.
		median := (band[bandSize/2-1] + band[bandSize/2]) / 2

		for j := offset; j < offset+bandSize; j++ {
			v := values[j]
			if v > median || (v == median && v > halfValue) {
				out[j/8] |= 1 << (7 - j%8)
			}
		}
	}

	return out
}
