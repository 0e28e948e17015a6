package blockhash

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
)

// Size selects one of the supported digest widths, in bits.
type Size int

const (
	Size16  Size = 16
	Size64  Size = 64
	Size144 Size = 144
	Size256 Size = 256
)

// Valid reports whether s is one of the supported digest sizes.
func (s Size) Valid() bool {
	return s.grid() != 0
}

// Bits returns the digest length in bits.
func (s Size) Bits() int { return int(s) }

// Bytes returns the digest length in bytes.
func (s Size) Bytes() int { return int(s) / 8 }

// grid returns the number of blocks per axis, or 0 for an unsupported size.
func (s Size) grid() int {
	switch s {
	case Size16:
		return 4
	case Size64:
		return 8
	case Size144:
		return 12
	case Size256:
		return 16
	default:
		return 0
	}
}

func (s Size) String() string {
	return fmt.Sprintf("%d-bit", int(s))
}

// maxDigestBytes is the byte length of the largest supported digest (Size256).
const maxDigestBytes = 32

// Digest is a fixed-length perceptual fingerprint of an image. It is an
// immutable value type: comparable with ==, usable as a map key, and ordered
// byte-lexicographically via Compare. Only the first Size().Bytes() bytes of
// the backing array are meaningful.
type Digest struct {
	size Size
	data [maxDigestBytes]byte
}

// New builds a digest from raw bytes previously obtained via Bytes. The input
// is trusted: extra bytes beyond the digest length are ignored, missing bytes
// are zero.
func New(size Size, raw []byte) Digest {
	d := Digest{size: size}
	copy(d.data[:size.Bytes()], raw)
	return d
}

// Size returns the digest width.
func (d Digest) Size() Size { return d.size }

// Bytes returns a copy of the digest's raw bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, d.size.Bytes())
	copy(out, d.data[:d.size.Bytes()])
	return out
}

// String encodes the digest as lowercase hex, two characters per byte.
func (d Digest) String() string {
	return hex.EncodeToString(d.data[:d.size.Bytes()])
}

// Compare orders digests byte-lexicographically. Digests of different sizes
// compare by their raw bytes like any others.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d.data[:d.size.Bytes()], other.data[:other.size.Bytes()])
}

// ErrSizeMismatch is returned by Distance when the two digests do not have
// the same size.
var ErrSizeMismatch = errors.New("blockhash: digests differ in size")

// Distance returns the Hamming distance between two digests of the same
// size: the number of differing bits, at most Size().Bits().
func (d Digest) Distance(other Digest) (int, error) {
	if d.size != other.size {
		return 0, ErrSizeMismatch
	}
	dist := 0
	for i := 0; i < d.size.Bytes(); i++ {
		dist += bits.OnesCount8(d.data[i] ^ other.data[i])
	}
	return dist, nil
}

// ParseError is returned when a digest string cannot be decoded.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("blockhash: invalid digest string %q", e.Input)
}

// Parse decodes a hex digest string. The digest size is inferred from the
// string length (the four supported sizes have mutually distinct hex lengths:
// 4, 16, 36 and 64 characters). Parsing accepts both hex cases; String always
// emits lowercase. Any other length, or any non-hex character, yields a
// *ParseError.
func Parse(s string) (Digest, error) {
	var size Size
	switch len(s) {
	case Size16.Bytes() * 2:
		size = Size16
	case Size64.Bytes() * 2:
		size = Size64
	case Size144.Bytes() * 2:
		size = Size144
	case Size256.Bytes() * 2:
		size = Size256
	default:
		return Digest{}, &ParseError{Input: s}
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, &ParseError{Input: s}
	}
	return New(size, raw), nil
}
