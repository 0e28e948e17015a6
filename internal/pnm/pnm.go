// Package pnm decodes the netpbm raster formats (PGM and PPM, ASCII and
// binary) into a pixel buffer that can be fingerprinted directly. The
// standard library has no netpbm support, and raw pixel dumps are common in
// scanned-image datasets.
package pnm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Pixmap is a decoded netpbm image. It implements the pixel access contract
// used by the fingerprint core.
type Pixmap struct {
	width    int
	height   int
	channels int // 1 for PGM, 3 for PPM
	data     []uint8
}

// IsPNMFile checks if a filename carries a netpbm extension.
func IsPNMFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pgm", ".ppm", ".pnm":
		return true
	}
	return false
}

// Dimensions returns the image width and height in pixels.
func (p *Pixmap) Dimensions() (int, int) {
	return p.width, p.height
}

// RGBA returns the 8-bit channel data for the pixel at (x, y). Grayscale
// pixels replicate their value across the color channels; netpbm has no
// alpha, so alpha is always opaque.
func (p *Pixmap) RGBA(x, y int) (r, g, b, a uint8) {
	i := (y*p.width + x) * p.channels
	if p.channels == 1 {
		v := p.data[i]
		return v, v, v, 255
	}
	return p.data[i], p.data[i+1], p.data[i+2], 255
}

// Decode parses a PGM or PPM stream. Supported magic numbers are P2/P5
// (grayscale) and P3/P6 (color); samples wider than 8 bits are scaled down.
func Decode(r io.Reader) (*Pixmap, error) {
	br := bufio.NewReader(r)

	magic, err := nextToken(br)
	if err != nil {
		return nil, fmt.Errorf("pnm: missing magic number: %w", err)
	}

	var channels int
	var ascii bool
	switch magic {
	case "P2":
		channels, ascii = 1, true
	case "P3":
		channels, ascii = 3, true
	case "P5":
		channels, ascii = 1, false
	case "P6":
		channels, ascii = 3, false
	default:
		return nil, fmt.Errorf("pnm: unsupported magic number %q", magic)
	}

	width, err := nextInt(br)
	if err != nil {
		return nil, fmt.Errorf("pnm: bad width: %w", err)
	}
	height, err := nextInt(br)
	if err != nil {
		return nil, fmt.Errorf("pnm: bad height: %w", err)
	}
	maxVal, err := nextInt(br)
	if err != nil {
		return nil, fmt.Errorf("pnm: bad maxval: %w", err)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pnm: invalid dimensions %dx%d", width, height)
	}
	if maxVal <= 0 || maxVal > 65535 {
		return nil, fmt.Errorf("pnm: invalid maxval %d", maxVal)
	}

	p := &Pixmap{
		width:    width,
		height:   height,
		channels: channels,
		data:     make([]uint8, width*height*channels),
	}

	if ascii {
		err = readASCIISamples(br, p, maxVal)
	} else {
		err = readBinarySamples(br, p, maxVal)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeBytes parses an in-memory PGM or PPM payload.
func DecodeBytes(data []byte) (*Pixmap, error) {
	return Decode(bytes.NewReader(data))
}

func readASCIISamples(br *bufio.Reader, p *Pixmap, maxVal int) error {
	for i := range p.data {
		v, err := nextInt(br)
		if err != nil {
			return fmt.Errorf("pnm: truncated sample data: %w", err)
		}
		if v < 0 || v > maxVal {
			return fmt.Errorf("pnm: sample %d out of range 0..%d", v, maxVal)
		}
		p.data[i] = scaleSample(v, maxVal)
	}
	return nil
}

func readBinarySamples(br *bufio.Reader, p *Pixmap, maxVal int) error {
	// Binary samples are 1 byte up to maxval 255, big-endian 2 bytes above.
	if maxVal < 256 {
		raw := make([]byte, len(p.data))
		if _, err := io.ReadFull(br, raw); err != nil {
			return fmt.Errorf("pnm: truncated sample data: %w", err)
		}
		for i, b := range raw {
			p.data[i] = scaleSample(int(b), maxVal)
		}
		return nil
	}

	raw := make([]byte, 2*len(p.data))
	if _, err := io.ReadFull(br, raw); err != nil {
		return fmt.Errorf("pnm: truncated sample data: %w", err)
	}
	for i := range p.data {
		v := int(raw[2*i])<<8 | int(raw[2*i+1])
		if v > maxVal {
			return fmt.Errorf("pnm: sample %d out of range 0..%d", v, maxVal)
		}
		p.data[i] = scaleSample(v, maxVal)
	}
	return nil
}

// scaleSample maps a sample in 0..maxVal onto the full 8-bit range.
func scaleSample(v, maxVal int) uint8 {
	if maxVal == 255 {
		return uint8(v)
	}
	return uint8(v * 255 / maxVal)
}

// nextToken skips whitespace and '#' comment lines, then reads one
// whitespace-delimited token. This is the shared grammar of all netpbm
// headers.
func nextToken(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			if sb.Len() > 0 && err == io.EOF {
				return sb.String(), nil
			}
			return "", err
		}

		switch {
		case c == '#' && sb.Len() == 0:
			if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if sb.Len() > 0 {
				return sb.String(), nil
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func nextInt(br *bufio.Reader) (int, error) {
	tok, err := nextToken(br)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("unexpected token %q", tok)
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, fmt.Errorf("value %q too large", tok)
		}
	}
	return n, nil
}
