package blockhash

// MaxBrightness is the largest brightness a pixel can report: three fully
// saturated 8-bit channels.
const MaxBrightness = 255 * 3

// PixelSource provides access to decoded pixel data. Implementations must be
// pure reads: repeated access to the same coordinate within one hash
// computation must return the same value. Coordinates passed by this package
// always satisfy 0 <= x < width and 0 <= y < height.
type PixelSource interface {
	// Dimensions returns the image width and height in pixels.
	Dimensions() (width, height int)

	// RGBA returns the non-premultiplied 8-bit channel data for the pixel
	// at (x, y).
	RGBA(x, y int) (r, g, b, a uint8)
}

// brightness is the per-pixel scalar fed into block aggregation: the channel
// sum r+g+b, except that a fully transparent pixel counts as white regardless
// of its color payload.
func brightness(src PixelSource, x, y int) uint64 {
	r, g, b, a := src.RGBA(x, y)
	if a == 0 {
		return MaxBrightness
	}
	return uint64(r) + uint64(g) + uint64(b)
}
