package blockhash

import (
	"image"
	"image/color"
)

// FromImage adapts a decoded standard-library image to a PixelSource.
// Channel data is read non-premultiplied, so a fully transparent pixel keeps
// its alpha of zero and hashes as white.
func FromImage(img image.Image) PixelSource {
	if n, ok := img.(*image.NRGBA); ok {
		return nrgbaSource{n}
	}
	return imageSource{img}
}

type imageSource struct {
	img image.Image
}

func (s imageSource) Dimensions() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s imageSource) RGBA(x, y int) (r, g, b, a uint8) {
	min := s.img.Bounds().Min
	c := color.NRGBAModel.Convert(s.img.At(min.X+x, min.Y+y)).(color.NRGBA)
	return c.R, c.G, c.B, c.A
}

// nrgbaSource skips the color-model conversion for the common decode result.
type nrgbaSource struct {
	img *image.NRGBA
}

func (s nrgbaSource) Dimensions() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s nrgbaSource) RGBA(x, y int) (r, g, b, a uint8) {
	min := s.img.Bounds().Min
	c := s.img.NRGBAAt(min.X+x, min.Y+y)
	return c.R, c.G, c.B, c.A
}
